package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
	"github.com/listenalong/backend/internal/server/identity"
	"github.com/listenalong/backend/internal/server/models"
	"github.com/listenalong/backend/internal/server/repositories/users"
)

// PartyEvictor is the slice of the party coordinator the user service needs:
// keeping party membership consistent when a user goes offline, without the
// logout path knowing anything else about parties.
type PartyEvictor interface {
	OnUserLogout(ctx context.Context, userID string) error
}

// UserService owns user records and the session-credential lifecycle.
type UserService struct {
	users    users.Repository
	verifier identity.Verifier
	parties  PartyEvictor
	log      logging.Logger
}

func NewUserService(repo users.Repository, verifier identity.Verifier, parties PartyEvictor, log logging.Logger) *UserService {
	return &UserService{
		users:    repo,
		verifier: verifier,
		parties:  parties,
		log:      log.With("component", "user_service"),
	}
}

// Register creates a record for an id the service has never seen, issuing
// its first session secret. Existing ids fail with
// common.ErrorAlreadyExists; callers route those through Login instead.
func (s *UserService) Register(ctx context.Context, externalID, displayName, capability string) (string, error) {
	secret := common.NewSecret()

	err := s.users.Create(ctx, &models.User{
		ID:            externalID,
		DisplayName:   displayName,
		SessionSecret: secret,
		Capabilities:  []string{capability},
		Online:        true,
	})
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "registered user", "id", externalID, "capability", capability)
	return secret, nil
}

// Login overwrites the session secret with a fresh value and marks the user
// online. Whatever secret was previously issued stops working the moment
// this returns: at most one secret is valid per user at any time.
func (s *UserService) Login(ctx context.Context, externalID string) (string, error) {
	secret := common.NewSecret()

	if err := s.users.SetSecret(ctx, externalID, secret); err != nil {
		return "", err
	}
	return secret, nil
}

// Authenticate is the boundary operation behind the register endpoint: it
// verifies possession with the identity verifier and then either creates the
// user or rotates their secret, depending on whether a record exists.
//
// Nothing is written before verification succeeds, so a verifier failure
// never leaves a half-created user behind.
func (s *UserService) Authenticate(ctx context.Context, externalID, capability, proof string) (string, error) {
	user, err := s.users.Get(ctx, externalID)

	switch {
	case err == nil:
		if err := s.verifier.CheckPossession(ctx, user.DisplayName, proof, externalID); err != nil {
			return "", err
		}
		return s.loginExisting(ctx, externalID, capability)

	case errors.Is(err, common.ErrorNotFound):
		profile, err := s.verifier.Lookup(ctx, externalID)
		if err != nil {
			return "", err
		}
		if err := s.verifier.CheckPossession(ctx, profile.DisplayName, proof, externalID); err != nil {
			return "", err
		}

		secret, err := s.Register(ctx, externalID, profile.DisplayName, capability)
		if errors.Is(err, common.ErrorAlreadyExists) {
			// lost a create race; the record exists now, treat as login
			return s.loginExisting(ctx, externalID, capability)
		}
		return secret, err

	default:
		return "", err
	}
}

func (s *UserService) loginExisting(ctx context.Context, externalID, capability string) (string, error) {
	secret, err := s.Login(ctx, externalID)
	if err != nil {
		return "", err
	}
	if err := s.users.AddCapability(ctx, externalID, capability); err != nil {
		return "", err
	}
	return secret, nil
}

// Logout clears the session and evicts the user from any party first, so
// party membership never references an offline user. Idempotent.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	if err := s.parties.OnUserLogout(ctx, userID); err != nil {
		return fmt.Errorf("party eviction error: %w", err)
	}
	if err := s.users.ClearSession(ctx, userID); err != nil {
		return err
	}
	s.log.Info(ctx, "user logged out", "id", userID)
	return nil
}

// Get is a pure lookup with no side effects.
func (s *UserService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.users.Get(ctx, userID)
}

// UpdateTrack replaces the user's current track only.
func (s *UserService) UpdateTrack(ctx context.Context, userID string, track *models.Track) error {
	return s.users.UpdateTrack(ctx, userID, track)
}

// Stats reports total and currently-online user counts.
func (s *UserService) Stats(ctx context.Context) (total, online int64, err error) {
	total, err = s.users.CountAll(ctx)
	if err != nil {
		return 0, 0, err
	}
	online, err = s.users.CountOnline(ctx)
	if err != nil {
		return 0, 0, err
	}
	return total, online, nil
}
