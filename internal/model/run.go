package model

import "time"

// RunStatus represents the current state of an analysis run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusFetching  RunStatus = "fetching"
	RunStatusScoring   RunStatus = "scoring"
	RunStatusEnriching RunStatus = "enriching"
	RunStatusComplete  RunStatus = "complete"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents a single analysis run for an institution.
type Run struct {
	ID          string      `json:"id"`
	Institution Institution `json:"institution"`
	Status      RunStatus   `json:"status"`
	Result      *RunResult  `json:"result,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// RunResult holds the final outcome of a run.
type RunResult struct {
	DistressLevel  DistressLevel `json:"distress_level"`
	CompositeScore *int          `json:"composite_score,omitempty"`
	UrgencyFlag    UrgencyFlag   `json:"urgency_flag,omitempty"`
	ProfileVersion string        `json:"profile_version"`
	Metadata       RunMetadata   `json:"metadata"`
	Error          string        `json:"error,omitempty"`
}

// RunMetadata records what the pipeline actually did, so callers can
// distinguish "V2 disabled" from "V2 failed" — the merged profile alone
// does not reveal which happened.
type RunMetadata struct {
	V2Enabled       bool      `json:"v2_enabled"`
	BaseScoreSource string    `json:"base_score_source"`
	PhasesExecuted  []string  `json:"phases_executed"`
	QueriesUsed     int       `json:"queries_used"`
	Status          string    `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}
