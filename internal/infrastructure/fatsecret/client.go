package fatsecret

import (
	"context"
	"encoding/json"
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

// Client handles communication with the FatSecret platform API. It is
// the ingredient-oriented augmentation provider: text search only, no
// barcode capability.
type Client struct {
	httpClient  *http.Client
	apiURL      string
	tokens      *tokenSource
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new FatSecret client. The free tier allows 5000
// calls per day, so roughly one call every 17 seconds sustained.
func NewClient(clientID, clientSecret, tokenURL, apiURL string) *Client {
	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}
	limiter := rate.NewLimiter(rate.Limit(5000.0/86400.0), 5)

	return &Client{
		httpClient:  httpClient,
		apiURL:      apiURL,
		tokens:      newTokenSource(clientID, clientSecret, tokenURL, httpClient),
		rateLimiter: limiter,
	}
}

// SetDebug toggles per-request logging.
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// Source returns the provider identifier.
func (c *Client) Source() string {
	return domain.SourceFatSecret
}

// SearchByText searches FatSecret foods, bounded by limit. Records
// whose description carries no caloric value are dropped.
func (c *Client) SearchByText(ctx context.Context, query string, limit int) ([]domain.NormalizedProduct, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrProviderUnavailable, err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("method", "foods.search")
	params.Set("search_expression", query)
	params.Set("max_results", strconv.Itoa(limit))
	params.Set("format", "json")

	reqURL := fmt.Sprintf("%s?%s", c.apiURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrProviderUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrProviderUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Token revoked server-side; next call refreshes it.
		c.tokens.invalidate()
		return nil, fmt.Errorf("%w: token rejected", domain.ErrProviderUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrProviderUnavailable, err)
	}
	if sr.Error != nil {
		return nil, fmt.Errorf("%w: api error %d: %s", domain.ErrProviderUnavailable, sr.Error.Code, sr.Error.Message)
	}

	foods := sr.Foods.Food
	products := make([]domain.NormalizedProduct, 0, len(foods))
	for i := range foods {
		if p, ok := mapFood(&foods[i]); ok {
			products = append(products, *p)
		}
	}

	if c.debug {
		log.Printf("[FATSECRET] query %q: %d raw, %d usable", query, len(foods), len(products))
	}
	return products, nil
}
