// Package store persists discovery runs. The aggregator never writes here;
// the calling layer records results after aggregation settles.
package store

import (
	"context"

	"github.com/sells-group/prospector/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for discovery runs.
type Store interface {
	CreateRun(ctx context.Context, companies []model.Company, sc model.SearchContext) (*model.DiscoveryRun, error)
	CompleteRun(ctx context.Context, runID string, persons []model.Person) error
	FailRun(ctx context.Context, runID string, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.DiscoveryRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.DiscoveryRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
