package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"SwipeSentinel/internal/model"
)

// HTTPClient implements Client against the service's REST API. Each
// account talks through its own proxy, so transports are cached per
// proxy string.
type HTTPClient struct {
	BaseURL string

	mu      sync.Mutex
	clients map[string]*http.Client
}

// NewHTTPClient creates a client for the given API base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		clients: make(map[string]*http.Client),
	}
}

func (c *HTTPClient) Name() string { return "http" }

// clientFor returns a cached http.Client routed through the account's proxy.
func (c *HTTPClient) clientFor(rawProxy string) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hc, ok := c.clients[rawProxy]; ok {
		return hc, nil
	}

	transport := &http.Transport{}
	if rawProxy != "" {
		p, err := ParseProxy(rawProxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(p.URL())
	}
	hc := &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
	c.clients[rawProxy] = hc
	return hc, nil
}

// profilePayload is the expected JSON shape of the profile endpoint.
type profilePayload struct {
	GoldExpiresAt int64 `json:"gold_expires_at"` // unix seconds, 0 = no entitlement
	LikedMeCount  int   `json:"liked_me_count"`
}

// FetchSignals refreshes the account's remote-reported state. HTTP 403
// maps to a ban signal and 401 to a dead token; neither is a transport
// error. Anything that prevents reading a response wraps ErrUnavailable.
func (c *HTTPClient) FetchSignals(ctx context.Context, acc model.Account) (model.RemoteSignals, error) {
	resp, err := c.do(ctx, acc, http.MethodGet, "/v2/profile", nil)
	if err != nil {
		return model.RemoteSignals{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden:
		return model.RemoteSignals{Banned: true}, nil
	case http.StatusUnauthorized:
		return model.RemoteSignals{Alive: false}, nil
	case http.StatusOK:
		var p profilePayload
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			return model.RemoteSignals{}, fmt.Errorf("%w: decode profile: %v", ErrUnavailable, err)
		}
		sig := model.RemoteSignals{Alive: true, LikedMeCount: p.LikedMeCount}
		if p.GoldExpiresAt > 0 {
			t := time.Unix(p.GoldExpiresAt, 0).UTC()
			sig.GoldExpiresAt = &t
		}
		return sig, nil
	default:
		return model.RemoteSignals{}, fmt.Errorf("%w: profile status %d", ErrUnavailable, resp.StatusCode)
	}
}

// UpdateBio pushes the assigned username into the account's profile text.
func (c *HTTPClient) UpdateBio(ctx context.Context, acc model.Account, username string) error {
	body := fmt.Sprintf(`{"username":%q}`, username)
	resp, err := c.do(ctx, acc, http.MethodPost, "/v2/profile/bio", []byte(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("update bio: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// SwipeLikedMe swipes through the inbound-likes queue and returns the
// number of matches reported by the service.
func (c *HTTPClient) SwipeLikedMe(ctx context.Context, acc model.Account) (int, error) {
	resp, err := c.do(ctx, acc, http.MethodPost, "/v2/likedme/swipe", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("swipe liked-me: status %d", resp.StatusCode)
	}
	var result struct {
		Matches int `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decode swipe result: %w", err)
	}
	return result.Matches, nil
}

func (c *HTTPClient) do(ctx context.Context, acc model.Account, method, path string, body []byte) (*http.Response, error) {
	hc, err := c.clientFor(acc.Proxy)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+acc.ID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}
