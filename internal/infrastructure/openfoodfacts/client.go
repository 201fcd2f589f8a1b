package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nutridex/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the Open Food Facts API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Open Food Facts client. OFF asks for at most
// 100 product reads per minute per consumer.
func NewClient(baseURL, userAgent string) *Client {
	limiter := rate.NewLimiter(rate.Limit(100.0/60.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     baseURL,
		userAgent:   userAgent,
		rateLimiter: limiter,
	}
}

// SetDebug toggles per-request logging.
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// Source returns the provider identifier.
func (c *Client) Source() string {
	return domain.SourceOpenFoodFacts
}

// ResolveByCode looks up a single product by its canonical 13-digit
// barcode. HTTP 404, status != 1, and records lacking both a name and a
// caloric value all count as not found.
func (c *Client) ResolveByCode(ctx context.Context, code string) (*domain.NormalizedProduct, error) {
	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(code))

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp productResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode product response: %v", domain.ErrProviderUnavailable, err)
	}

	if resp.Status != 1 {
		if c.debug {
			log.Printf("[OFF] code %s: status %d (%s)", code, resp.Status, resp.StatusVerbose)
		}
		return nil, domain.ErrProductNotFound
	}

	product, ok := mapProduct(&resp.Product)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if product.Identifier == "" {
		product.Identifier = code
	}
	return product, nil
}

// SearchByText runs a free-text search, bounded by limit. Rejected
// records (missing calories) are dropped before returning.
func (c *Client) SearchByText(ctx context.Context, query string, limit int) ([]domain.NormalizedProduct, error) {
	params := url.Values{}
	params.Add("search_terms", query)
	params.Add("search_simple", "1")
	params.Add("action", "process")
	params.Add("json", "1")
	params.Add("page_size", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	body, err := c.get(ctx, reqURL)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrProviderUnavailable, err)
	}

	products := make([]domain.NormalizedProduct, 0, len(resp.Products))
	for i := range resp.Products {
		if p, ok := mapProduct(&resp.Products[i]); ok {
			products = append(products, *p)
		}
	}

	if c.debug {
		log.Printf("[OFF] query %q: %d raw, %d usable", query, len(resp.Products), len(products))
	}
	return products, nil
}

// get executes a rate-limited GET with at most one retry on a timeout
// or transient server error.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrProviderUnavailable, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: build request: %v", domain.ErrProviderUnavailable, err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if c.debug {
				log.Printf("[OFF] request error (attempt %d): %v", attempt, err)
			}
			lastErr = fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, domain.ErrProductNotFound
		case resp.StatusCode >= http.StatusInternalServerError:
			if c.debug {
				log.Printf("[OFF] server error (attempt %d): status %d", attempt, resp.StatusCode)
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
		case readErr != nil:
			return nil, fmt.Errorf("%w: read body: %v", domain.ErrProviderUnavailable, readErr)
		}

		return body, nil
	}
	return nil, lastErr
}
