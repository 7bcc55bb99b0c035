package storage

import (
	"context"

	"github.com/mcoot/brettonwoods/internal/model"
)

// Storage persists the server's global state as a unit. Saves are
// best-effort from the caller's point of view: a failed save is logged and
// retried on the next trigger, never rolled back into room state.
type Storage interface {
	// Load returns the last saved state, or model.ErrNoState if nothing has
	// been saved yet
	Load(ctx context.Context) (*model.GlobalState, error)

	// Save replaces the stored state
	Save(ctx context.Context, state *model.GlobalState) error

	// Close releases any connections held by the backend
	Close() error
}
