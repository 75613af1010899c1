// Package users provides the repository owning user records and their
// session credentials.
package users

import (
	"context"

	"github.com/listenalong/backend/internal/server/models"
)

// Repository is the persistence boundary for users.
//
// All mutations are single-field operations against the backing store so
// concurrent requests on the same record never lose updates.
type Repository interface {
	// Create inserts a new user record. Returns common.ErrorAlreadyExists
	// if a record with the same id is already present.
	Create(ctx context.Context, user *models.User) error

	// Get returns the user with the given id, or common.ErrorNotFound.
	Get(ctx context.Context, id string) (*models.User, error)

	// SetSecret overwrites the session secret and marks the user online,
	// invalidating any previously issued secret. Returns
	// common.ErrorNotFound for an unknown id.
	SetSecret(ctx context.Context, id, secret string) error

	// ClearSession empties the session secret, marks the user offline and
	// clears the current track. Idempotent.
	ClearSession(ctx context.Context, id string) error

	// AddCapability adds a client capability to the user's set. Adding an
	// already-registered capability is a no-op.
	AddCapability(ctx context.Context, id, capability string) error

	// UpdateTrack replaces the user's current track only.
	UpdateTrack(ctx context.Context, id string, track *models.Track) error

	// CountAll returns the total number of user records.
	CountAll(ctx context.Context) (int64, error)

	// CountOnline returns the number of users currently online.
	CountOnline(ctx context.Context) (int64, error)
}
