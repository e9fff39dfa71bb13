// Package aisearch provides a client for the AI web-research endpoint,
// which streams discovered contacts as Server-Sent Events instead of
// returning a single JSON body.
package aisearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
)

// Client performs streaming contact research.
type Client interface {
	// Search runs AI web research for the given companies and returns every
	// contact carried by the event stream. This provider does not discover
	// email addresses; returned persons always have an empty email.
	Search(ctx context.Context, companies []model.Company, sc model.SearchContext) ([]model.Person, error)
}

// ResearchedContact is the raw contact shape carried by stream events.
type ResearchedContact struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Company     string `json:"company"`
	CompanyID   string `json:"companyId"`
	LinkedInURL string `json:"linkedinUrl,omitempty"`
}

type streamEvent struct {
	Result *struct {
		Contacts []ResearchedContact `json:"contacts"`
	} `json:"result"`
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an AI-search client.
func NewClient(apiKey, baseURL string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http: &http.Client{
			// Research streams can run long; no per-request timeout here,
			// cancellation comes from ctx.
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, companies []model.Company, sc model.SearchContext) ([]model.Person, error) {
	body, err := json.Marshal(struct {
		Companies []model.Company     `json:"companies"`
		Context   model.SearchContext `json:"context"`
	}{companies, sc})
	if err != nil {
		return nil, eris.Wrap(err, "aisearch: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/research", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "aisearch: create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "aisearch: send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, eris.Errorf("aisearch: unexpected status %d: %s", resp.StatusCode, string(msg))
	}

	return c.decodeStream(resp.Body)
}

// decodeStream incrementally decodes an SSE byte stream. Bytes accumulate in
// a pending buffer, complete lines are split off on '\n', and the trailing
// partial line is retained across reads. Malformed lines are skipped; only a
// transport-level read failure aborts the stream.
func (c *httpClient) decodeStream(r io.Reader) ([]model.Person, error) {
	var (
		persons []model.Person
		pending []byte
		chunk   = make([]byte, 4096)
	)

	for {
		n, err := r.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)
			for {
				idx := bytes.IndexByte(pending, '\n')
				if idx < 0 {
					break
				}
				line := pending[:idx]
				pending = pending[idx+1:]
				persons = c.consumeLine(line, persons)
			}
		}
		if err == io.EOF {
			persons = c.consumeLine(pending, persons)
			return persons, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "aisearch: read stream")
		}
	}
}

// consumeLine parses a single SSE frame line and appends any contacts it
// carries. Non-data lines and unparseable payloads are ignored.
func (c *httpClient) consumeLine(line []byte, persons []model.Person) []model.Person {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || !bytes.HasPrefix(line, []byte("data:")) {
		return persons
	}
	payload := bytes.TrimSpace(bytes.TrimPrefix(line, []byte("data:")))
	if len(payload) == 0 {
		return persons
	}

	var evt streamEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		zap.L().Debug("aisearch: skipping malformed stream line", zap.Error(err))
		return persons
	}
	if evt.Result == nil {
		return persons
	}

	for _, rc := range evt.Result.Contacts {
		persons = append(persons, convertContact(rc))
	}
	return persons
}

// convertContact maps a raw researched contact to the canonical record.
func convertContact(rc ResearchedContact) model.Person {
	return model.Person{
		ID:                 uuid.NewString(),
		Company:            rc.Company,
		CompanyID:          rc.CompanyID,
		Name:               rc.Name,
		Title:              rc.Role,
		Email:              "", // web research never yields addresses
		LinkedIn:           rc.LinkedInURL,
		Source:             model.SourceWebResearch,
		VerificationStatus: model.VerificationUnverified,
	}
}
