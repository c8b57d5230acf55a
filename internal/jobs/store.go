package jobs

import (
	"context"
	"errors"
	"fmt"

	"vodkeep/internal/config"
)

var (
	// ErrNotFound is returned when a job id has no record.
	ErrNotFound = errors.New("job not found")
	// ErrDuplicateID is returned when a create collides with an
	// existing job id.
	ErrDuplicateID = errors.New("job id already exists")
)

// Store persists jobs. Implementations must return deep copies; the
// pipeline executor is the only writer for a running job and mutates
// its own copy before calling Update.
type Store interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, job *Job) error
	// List returns jobs most recently started first, optionally
	// filtered by status (empty status means all).
	List(ctx context.Context, status Status) ([]*Job, error)
	Close() error
}

// OpenStore builds the store selected by configuration.
func OpenStore(cfg *config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Store.Path)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
