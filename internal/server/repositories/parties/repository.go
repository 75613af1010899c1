// Package parties provides the repository owning party records and raw
// membership mutations.
package parties

import (
	"context"

	"github.com/listenalong/backend/internal/server/models"
)

// Repository is the persistence boundary for parties.
//
// Membership mutations are expressed as atomic single-field operations
// against the store, never as read-modify-write of the whole record, so two
// participants joining or leaving the same party concurrently cannot lose
// each other's update.
type Repository interface {
	// Insert stores a new party. The write is atomic-if-absent: when two
	// hosts race on the same code, exactly one insert wins and the loser
	// gets common.ErrorAlreadyExists.
	Insert(ctx context.Context, party *models.Party) error

	// GetByCode returns the party with the given code, or common.ErrorNotFound.
	GetByCode(ctx context.Context, code string) (*models.Party, error)

	// FindByParticipant returns the party userID currently belongs to, or
	// common.ErrorNotFound.
	FindByParticipant(ctx context.Context, userID string) (*models.Party, error)

	// UpdateTrack replaces the party's current track only.
	UpdateTrack(ctx context.Context, code string, track *models.Track) error

	// AddParticipant adds userID to the participant set. Idempotent for an
	// existing member; common.ErrorNotFound for an unknown code.
	AddParticipant(ctx context.Context, code, userID string) error

	// RemoveParticipant removes userID from the participant set.
	// Removing a non-member is a no-op; common.ErrorNotFound for an
	// unknown code.
	RemoveParticipant(ctx context.Context, code, userID string) error

	// Delete removes the party record. Idempotent.
	Delete(ctx context.Context, code string) error
}
