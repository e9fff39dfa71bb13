package provider

import (
	"context"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/contactapi"
)

// endpointFinder adapts a contactapi.Client to the Finder interface for
// providers that speak the shared JSON contract.
type endpointFinder struct {
	name       string
	source     model.Source
	configured bool
	client     contactapi.Client
}

// NewApollo creates the Apollo finder. An empty API key leaves the provider
// unconfigured and it will be skipped during fan-out.
func NewApollo(apiKey, baseURL string, opts ...contactapi.Option) Finder {
	return &endpointFinder{
		name:       Apollo,
		source:     model.SourceApollo,
		configured: apiKey != "",
		client:     contactapi.NewClient(Apollo, apiKey, baseURL, opts...),
	}
}

// NewHunter creates the Hunter finder.
func NewHunter(apiKey, baseURL string, opts ...contactapi.Option) Finder {
	return &endpointFinder{
		name:       Hunter,
		source:     model.SourceHunter,
		configured: apiKey != "",
		client:     contactapi.NewClient(Hunter, apiKey, baseURL, opts...),
	}
}

// NewApify creates the Apify finder. Its billing unit is actor runs, which
// the endpoint reports in the response summary.
func NewApify(apiKey, baseURL string, opts ...contactapi.Option) Finder {
	return &endpointFinder{
		name:       Apify,
		source:     model.SourceApify,
		configured: apiKey != "",
		client:     contactapi.NewClient(Apify, apiKey, baseURL, opts...),
	}
}

func (f *endpointFinder) Name() string     { return f.name }
func (f *endpointFinder) Configured() bool { return f.configured }

func (f *endpointFinder) Find(ctx context.Context, companies []model.Company, sc model.SearchContext) (*FindResult, error) {
	resp, err := f.client.FindContacts(ctx, contactapi.FindRequest{
		Companies: companies,
		Context:   sc,
	})
	if err != nil {
		return nil, err
	}

	persons := resp.Persons
	for i := range persons {
		if persons[i].Source == "" {
			persons[i].Source = f.source
		}
	}

	return &FindResult{
		Persons:       persons,
		CreditsUsed:   resp.Summary.CreditsUsed,
		ActorRunsUsed: resp.Summary.ActorRunsUsed,
	}, nil
}
