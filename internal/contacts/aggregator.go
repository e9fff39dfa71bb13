// Package contacts implements multi-provider contact discovery: concurrent
// provider fan-out, cross-provider deduplication, seniority classification,
// ranking, and per-provider credit accounting.
package contacts

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/provider"
)

// ErrNoProviders indicates the caller enabled no configured provider. This
// is a caller-configuration problem, reported in the response body rather
// than as a transport failure.
var ErrNoProviders = eris.New("no contact providers selected")

// FindRequest is one contact-discovery request.
type FindRequest struct {
	Companies []model.Company     `json:"companies"`
	Context   model.SearchContext `json:"context"`
	// Providers enables providers by canonical name. An enabled provider is
	// still skipped when its credential is not configured.
	Providers map[string]bool `json:"providers"`
}

// ProviderResult reports one provider's contribution to a request.
type ProviderResult struct {
	Found  int    `json:"found"`
	Errors string `json:"errors,omitempty"`
}

// Summary aggregates request-level statistics.
type Summary struct {
	CompaniesProcessed int                     `json:"companiesProcessed"`
	ContactsFound      int                     `json:"contactsFound"`
	ProvidersUsed      []string                `json:"providersUsed"`
	SeniorityBreakdown map[model.Seniority]int `json:"seniorityBreakdown"`
	// MinSeniorityRank is the advisory threshold computed from the caller's
	// targetSeniority preference. Nothing is filtered by it here.
	MinSeniorityRank int `json:"minSeniorityRank"`
}

// FindResponse is the unified result of a discovery request.
type FindResponse struct {
	Persons         []model.Person            `json:"persons"`
	CreditsUsed     CreditTotals              `json:"creditsUsed"`
	ProviderResults map[string]ProviderResult `json:"providerResults"`
	Summary         Summary                   `json:"summary"`
	Error           string                    `json:"error,omitempty"`
}

// Aggregator fans a discovery request out to every enabled provider and
// merges the results into one deduplicated, ranked contact list.
type Aggregator struct {
	registry        *provider.Registry
	apifyCostPerRun float64
}

// NewAggregator creates an Aggregator over the given provider registry.
func NewAggregator(registry *provider.Registry) *Aggregator {
	return &Aggregator{
		registry:        registry,
		apifyCostPerRun: provider.DefaultApifyCostPerRun,
	}
}

// WithApifyCostPerRun overrides the compute-unit cost of one actor run.
func (a *Aggregator) WithApifyCostPerRun(cost float64) *Aggregator {
	a.apifyCostPerRun = cost
	return a
}

// Find runs one discovery request to completion. Provider failures are
// isolated: a failed provider contributes zero contacts and an error string
// in ProviderResults, and never aborts its siblings or the request. Find
// itself only reports caller-configuration problems, via the response Error
// field.
func (a *Aggregator) Find(ctx context.Context, req FindRequest) *FindResponse {
	resp := &FindResponse{
		Persons:         []model.Person{},
		ProviderResults: map[string]ProviderResult{},
		Summary: Summary{
			CompaniesProcessed: len(req.Companies),
			ProvidersUsed:      []string{},
			SeniorityBreakdown: map[model.Seniority]int{},
			MinSeniorityRank:   MinRankFor(req.Context.TargetSeniority),
		},
	}

	if len(req.Companies) == 0 {
		return resp
	}

	var active []provider.Finder
	for _, name := range provider.Order {
		if !req.Providers[name] {
			continue
		}
		f := a.registry.Get(name)
		if f == nil || !f.Configured() {
			continue
		}
		active = append(active, f)
	}
	if len(active) == 0 {
		resp.Error = ErrNoProviders.Error()
		return resp
	}

	type outcome struct {
		res *provider.FindResult
		err error
	}

	// Fan out to all providers concurrently and wait for every one of them
	// to settle. No early exit: a fast failure must not cancel a slow
	// sibling's in-flight call, so goroutines always return nil.
	var (
		mu       sync.Mutex
		outcomes = make(map[string]outcome, len(active))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range active {
		g.Go(func() error {
			res, err := f.Find(gctx, req.Companies, req.Context)
			mu.Lock()
			outcomes[f.Name()] = outcome{res: res, err: err}
			mu.Unlock()
			if err != nil {
				zap.L().Warn("contacts: provider failed",
					zap.String("provider", f.Name()),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	var combined []model.Person
	for _, f := range active {
		name := f.Name()
		oc := outcomes[name]
		if oc.err != nil {
			resp.ProviderResults[name] = ProviderResult{Errors: oc.err.Error()}
			continue
		}
		resp.ProviderResults[name] = ProviderResult{Found: len(oc.res.Persons)}
		resp.CreditsUsed.add(name, creditsFor(name, oc.res, a.apifyCostPerRun))
		combined = append(combined, oc.res.Persons...)
		if len(oc.res.Persons) > 0 {
			resp.Summary.ProvidersUsed = append(resp.Summary.ProvidersUsed, name)
		}
	}

	merged := Dedupe(combined)
	for i := range merged {
		if merged[i].Seniority == "" {
			merged[i].Seniority = ClassifySeniority(merged[i].Title)
		}
	}
	sortPersons(merged)

	resp.Persons = merged
	resp.Summary.ContactsFound = len(merged)
	resp.Summary.SeniorityBreakdown = seniorityBreakdown(merged)

	zap.L().Info("contacts: discovery complete",
		zap.Int("companies", len(req.Companies)),
		zap.Int("contacts", len(merged)),
		zap.Strings("providers_used", resp.Summary.ProvidersUsed),
	)

	return resp
}
