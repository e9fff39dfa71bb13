// Package contactapi provides a client for contact-discovery endpoints that
// speak the shared companies+context JSON contract (Apollo, Hunter, Apify).
package contactapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospector/internal/model"
)

// Client performs contact lookups against one discovery endpoint.
type Client interface {
	FindContacts(ctx context.Context, req FindRequest) (*FindResponse, error)
}

// FindRequest is the request body for POST /contacts.
type FindRequest struct {
	Companies []model.Company     `json:"companies"`
	Context   model.SearchContext `json:"context"`
}

// FindResponse is the response from a discovery endpoint.
type FindResponse struct {
	Persons []model.Person `json:"persons"`
	Summary Summary        `json:"summary"`
	Error   string         `json:"error,omitempty"`
}

// Summary carries the provider's own accounting for the lookup.
type Summary struct {
	Found         int  `json:"found"`
	CreditsUsed   *int `json:"creditsUsed,omitempty"`
	ActorRunsUsed int  `json:"actorRunsUsed,omitempty"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the endpoint base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit throttles requests to rps req/s. Zero disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	name    string
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client for one discovery endpoint. The name is used
// in error messages only.
func NewClient(name, apiKey, baseURL string, opts ...Option) Client {
	c := &httpClient{
		name:    name,
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(2, 2),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) FindContacts(ctx context.Context, req FindRequest) (*FindResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrapf(err, "%s: rate limit", c.name)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: marshal request", c.name)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contacts", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "%s: create request", c.name)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: send request", c.name)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: read response", c.name)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("%s: unexpected status %d: %s", c.name, resp.StatusCode, string(respBody))
	}

	var result FindResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrapf(err, "%s: unmarshal response", c.name)
	}
	if result.Error != "" {
		return nil, eris.Errorf("%s: provider error: %s", c.name, result.Error)
	}

	return &result, nil
}
