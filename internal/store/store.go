// Package store persists analysis runs and merged profiles, with SQLite for
// local single-analyst use and Postgres for the shared service deployment.
package store

import (
	"context"

	"github.com/charter-stone/analyst-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	EIN    string          `json:"ein,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the analysis pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, inst model.Institution) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Profiles
	SaveProfile(ctx context.Context, runID string, profile *model.Profile) error
	GetLatestProfile(ctx context.Context, ein string) (*model.Profile, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
