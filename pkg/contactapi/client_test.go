package contactapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

func TestFindContacts(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   string
		wantFound int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"persons": [
					{"id": "p1", "name": "Jane Smith", "companyId": "acme", "email": "jane@acme.com", "emailCertainty": 90}
				],
				"summary": {"found": 1, "creditsUsed": 1}
			}`,
			wantFound: 1,
		},
		{
			name:    "server_error",
			status:  http.StatusInternalServerError,
			body:    `{"error": "internal server error"}`,
			wantErr: "unexpected status 500",
		},
		{
			name:    "rate_limit",
			status:  http.StatusTooManyRequests,
			body:    `{"error": "rate limit exceeded"}`,
			wantErr: "unexpected status 429",
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
		{
			name:    "embedded_error",
			status:  http.StatusOK,
			body:    `{"persons": [], "summary": {"found": 0}, "error": "quota exceeded"}`,
			wantErr: "quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/contacts", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

				var req FindRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Len(t, req.Companies, 1)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("apollo", "test-key", srv.URL, WithRateLimit(0))

			resp, err := client.FindContacts(context.Background(), FindRequest{
				Companies: []model.Company{{ID: "acme", Name: "Acme", Domain: "acme.com"}},
				Context:   model.SearchContext{TargetRoles: []string{"sales"}},
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Len(t, resp.Persons, tt.wantFound)
			require.NotNil(t, resp.Summary.CreditsUsed)
			assert.Equal(t, 1, *resp.Summary.CreditsUsed)
		})
	}
}

func TestFindContacts_ActorRunSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"persons": [], "summary": {"found": 0, "actorRunsUsed": 3}}`))
	}))
	defer srv.Close()

	client := NewClient("apify", "test-key", srv.URL, WithRateLimit(0))

	resp, err := client.FindContacts(context.Background(), FindRequest{})
	require.NoError(t, err)
	assert.Nil(t, resp.Summary.CreditsUsed)
	assert.Equal(t, 3, resp.Summary.ActorRunsUsed)
}
