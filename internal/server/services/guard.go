// Package services contains the server-side business logic: the session
// guard, the user service, and the party coordinator.
package services

import (
	"context"
	"crypto/subtle"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/server/models"
	"github.com/listenalong/backend/internal/server/repositories/users"
)

// SessionGuard verifies that a caller presents the session secret currently
// on file for the claimed user id. Every privileged operation runs this
// check first, before any mutation is attempted.
type SessionGuard struct {
	users users.Repository
}

func NewSessionGuard(repo users.Repository) *SessionGuard {
	return &SessionGuard{users: repo}
}

// Authorize resolves the user and compares the presented secret against the
// stored one. It returns the resolved record on success so callers avoid a
// second lookup.
//
// An offline user has an empty stored secret and can never pass: the failure
// is Unauthorized, not NotFound, so a stale client learns its credential
// expired rather than that the account vanished.
func (g *SessionGuard) Authorize(ctx context.Context, userID, presentedSecret string) (*models.User, error) {
	user, err := g.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.SessionSecret == "" {
		return nil, common.ErrorUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(user.SessionSecret), []byte(presentedSecret)) != 1 {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}
