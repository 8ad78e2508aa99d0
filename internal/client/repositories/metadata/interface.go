// Package metadata keeps the agent state that has to survive a restart,
// such as the session token of the logged-in user.
package metadata

import (
	"context"
	"time"
)

// KeySessionToken names the persisted session token.
const KeySessionToken = "authToken"

// Entry is one stored value and the time it was last written.
type Entry struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}

// Repository stores named string values. Get returns (nil, nil) for a
// missing name; Remove reports whether a value was there.
type Repository interface {
	Get(ctx context.Context, name string) (*Entry, error)
	Put(ctx context.Context, name, value string) error
	Remove(ctx context.Context, name string) (bool, error)
}
