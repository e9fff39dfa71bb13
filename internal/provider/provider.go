// Package provider defines the interface and registry for contact-data providers.
package provider

import (
	"context"

	"github.com/sells-group/prospector/internal/model"
)

// Canonical provider names. These are the keys used in request enablement
// maps and response accounting.
const (
	Apollo   = "apollo"
	Hunter   = "hunter"
	Apify    = "apify"
	AISearch = "aiSearch"
)

// Order is the canonical provider iteration order. Fan-out runs all
// providers concurrently; this order only fixes how results are merged and
// reported so output is deterministic.
var Order = []string{Apollo, Hunter, Apify, AISearch}

// FindResult is the complete response from one provider call.
type FindResult struct {
	Persons []model.Person `json:"persons"`
	// CreditsUsed is the provider's own credit report. Nil when the
	// provider did not report one; accounting then falls back to the
	// contact count.
	CreditsUsed *int `json:"creditsUsed,omitempty"`
	// ActorRunsUsed counts scraper invocations for actor-run-billed
	// providers (Apify). Independent of how many contacts came back.
	ActorRunsUsed int `json:"actorRunsUsed,omitempty"`
}

// Finder fetches contacts for a set of companies from one external source.
type Finder interface {
	// Name returns the canonical provider name.
	Name() string
	// Configured reports whether the provider's credential is present.
	// Unconfigured providers are skipped even when the caller enables them.
	Configured() bool
	// Find fetches contacts for the given companies and targeting context.
	Find(ctx context.Context, companies []model.Company, sc model.SearchContext) (*FindResult, error)
}
