package model

import "time"

// RunStatus represents the current state of a discovery run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// DiscoveryRun is one persisted contact-discovery request and its outcome.
// The aggregator itself never writes these; persistence happens in the
// calling layer after aggregation finishes.
type DiscoveryRun struct {
	ID        string        `json:"id"`
	Companies []Company     `json:"companies"`
	Context   SearchContext `json:"context"`
	Status    RunStatus     `json:"status"`
	Persons   []Person      `json:"persons,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
