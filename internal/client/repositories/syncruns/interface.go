// Package syncruns keeps a short history of sync passes in the agent
// database so the console can report when the mirror was last refreshed.
package syncruns

import (
	"context"
	"time"
)

// Run is the persisted outcome of one sync pass.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Success    bool
	Message    string
	Errors     int
}

// Repository describes the sync history store.
type Repository interface {
	// Record inserts a run. Recording the same ID twice overwrites it.
	Record(ctx context.Context, run Run) error

	// Last returns the most recent run, or (nil, nil) when none exist.
	Last(ctx context.Context) (*Run, error)

	// List returns up to limit runs, newest first.
	List(ctx context.Context, limit int) ([]Run, error)

	// Prune keeps the newest keep runs and deletes the rest.
	Prune(ctx context.Context, keep int) error
}
