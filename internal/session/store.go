package session

import (
	"context"
	"time"

	"github.com/pssnndl/Recolorization/pkg/models"
)

// Store is the session persistence interface the engine depends on.
type Store interface {
	// Get returns the session with the given ID, or (nil, nil) when no
	// session exists under that ID.
	Get(ctx context.Context, id string) (*models.Session, error)
	// Save upserts the session.
	Save(ctx context.Context, s *models.Session) error
	// Delete removes the session if present.
	Delete(ctx context.Context, id string) error
	// PurgeIdle removes sessions not updated within maxIdle and returns
	// how many were removed.
	PurgeIdle(ctx context.Context, maxIdle time.Duration) (int, error)
}

var _ Store = (*DB)(nil)
