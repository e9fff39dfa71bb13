package provider

import (
	"context"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/aisearch"
)

// aiSearchFinder adapts the streaming research client to the Finder
// interface. The stream carries no credit accounting; usage is reported
// downstream as the contact count, for visibility only.
type aiSearchFinder struct {
	configured bool
	client     aisearch.Client
}

// NewAISearch creates the AI web-research finder.
func NewAISearch(apiKey, baseURL string, opts ...aisearch.Option) Finder {
	return &aiSearchFinder{
		configured: apiKey != "",
		client:     aisearch.NewClient(apiKey, baseURL, opts...),
	}
}

func (f *aiSearchFinder) Name() string     { return AISearch }
func (f *aiSearchFinder) Configured() bool { return f.configured }

func (f *aiSearchFinder) Find(ctx context.Context, companies []model.Company, sc model.SearchContext) (*FindResult, error) {
	persons, err := f.client.Search(ctx, companies, sc)
	if err != nil {
		return nil, err
	}
	return &FindResult{Persons: persons}, nil
}
