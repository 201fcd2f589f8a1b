package fatsecret

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nutridex/backend/internal/domain"
)

// expirySkew renews the token slightly before the platform invalidates
// it so an in-flight request never races the expiry.
const expirySkew = 30 * time.Second

// tokenSource caches a FatSecret OAuth client-credentials token and
// refreshes it lazily when expired. It is owned by one Client and passed
// by reference; there is no package-level credential state.
type tokenSource struct {
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func newTokenSource(clientID, clientSecret, tokenURL string, httpClient *http.Client) *tokenSource {
	return &tokenSource{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		httpClient:   httpClient,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns the cached access token, refreshing it first when it is
// missing or within the expiry skew.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && time.Now().Before(ts.expiry.Add(-expirySkew)) {
		return ts.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", "basic")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build token request: %v", domain.ErrProviderUnavailable, err)
	}
	req.SetBasicAuth(ts.clientID, ts.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: token request: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read token response: %v", domain.ErrProviderUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: token endpoint status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", domain.ErrProviderUnavailable, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrProviderUnavailable)
	}

	ts.token = tr.AccessToken
	ts.expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return ts.token, nil
}

// invalidate drops the cached token so the next call refreshes it.
func (ts *tokenSource) invalidate() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.token = ""
	ts.expiry = time.Time{}
}
