package contacts

import "github.com/sells-group/prospector/internal/provider"

// CreditTotals holds per-provider credit consumption for one request.
// Units differ per provider: Apollo and Hunter bill whole credits per paid
// lookup, Apify bills compute-units per actor run, and AI search is free
// (its figure is the contact count, shown for visibility only).
type CreditTotals struct {
	Apollo   float64 `json:"apollo"`
	Hunter   float64 `json:"hunter"`
	Apify    float64 `json:"apify"`
	AISearch float64 `json:"aiSearch"`
}

// creditsFor reproduces each provider's billing model from its result.
// Apollo and Hunter report their own credit totals; when they don't, the
// contact count stands in. Apify bills per actor run regardless of how many
// contacts a run returned, including zero.
func creditsFor(name string, res *provider.FindResult, apifyCostPerRun float64) float64 {
	switch name {
	case provider.Apollo, provider.Hunter:
		if res.CreditsUsed != nil {
			return float64(*res.CreditsUsed)
		}
		return float64(len(res.Persons))
	case provider.Apify:
		return apifyCostPerRun * float64(res.ActorRunsUsed)
	case provider.AISearch:
		return float64(len(res.Persons))
	}
	return 0
}

// add records a provider's credit total.
func (t *CreditTotals) add(name string, credits float64) {
	switch name {
	case provider.Apollo:
		t.Apollo += credits
	case provider.Hunter:
		t.Hunter += credits
	case provider.Apify:
		t.Apify += credits
	case provider.AISearch:
		t.AISearch += credits
	}
}
