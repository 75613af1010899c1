package services

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
	"github.com/listenalong/backend/internal/server/models"
	"github.com/listenalong/backend/internal/server/partycode"
	"github.com/listenalong/backend/internal/server/repositories/parties"
)

// startAttempts bounds the generate-then-insert race loop: a freshly
// generated code can still collide with a concurrent insert, so Start
// redraws a few times before giving up.
const startAttempts = 3

// PartyService coordinates party lifecycle and membership. Every mutation
// goes through a single atomic repository operation, so two concurrent
// requests can never observe a half-applied membership change.
type PartyService struct {
	parties parties.Repository
	codes   *partycode.Generator
	log     logging.Logger
}

func NewPartyService(repo parties.Repository, codes *partycode.Generator, log logging.Logger) *PartyService {
	return &PartyService{
		parties: repo,
		codes:   codes,
		log:     log.With("component", "party_service"),
	}
}

// Start creates a party hosted by hostID and returns its join code together
// with the host secret. The initial track, when given, rides the insert
// itself, so the party is never observable without it. A user already
// hosting a party gets common.ErrorAlreadyHosting; a user who is merely a
// member of some other party is moved out of it first.
func (s *PartyService) Start(ctx context.Context, hostID string, initialTrack *models.Track) (code, hostSecret string, err error) {
	if err := s.detach(ctx, hostID); err != nil {
		return "", "", err
	}

	hostSecret = common.NewSecret()

	for attempt := 0; attempt < startAttempts; attempt++ {
		code, err = s.codes.Generate(ctx)
		if err != nil {
			return "", "", err
		}

		err = s.parties.Insert(ctx, &models.Party{
			Code:         code,
			HostID:       hostID,
			HostSecret:   hostSecret,
			Participants: []string{hostID},
			CurrentTrack: initialTrack,
		})
		if errors.Is(err, common.ErrorAlreadyExists) {
			continue
		}
		if err != nil {
			return "", "", err
		}

		s.log.Info(ctx, "party started", "code", code, "host", hostID)
		return code, hostSecret, nil
	}
	return "", "", common.ErrorNamespaceExhausted
}

// Join adds userID to the party identified by code and returns the host id.
// Joining a party the user already belongs to succeeds without change.
func (s *PartyService) Join(ctx context.Context, code, userID string) (string, error) {
	party, err := s.parties.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if party.HasParticipant(userID) {
		return party.HostID, nil
	}

	if err := s.detach(ctx, userID); err != nil {
		return "", err
	}
	if err := s.parties.AddParticipant(ctx, code, userID); err != nil {
		return "", err
	}

	s.log.Info(ctx, "user joined party", "code", code, "user", userID)
	return party.HostID, nil
}

// Leave removes userID from the party identified by code. The host must
// present the host secret and leaving dissolves the party; a plain member
// must present no secret at all, and presenting one is treated as an
// authority claim the member does not hold. An unknown code or a caller who
// is not in that party fails with common.ErrorNotFound.
func (s *PartyService) Leave(ctx context.Context, userID, code, presentedSecret string) error {
	party, err := s.parties.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if !party.HasParticipant(userID) {
		return common.ErrorNotFound
	}

	if party.HostID == userID {
		if !secretMatches(party.HostSecret, presentedSecret) {
			return common.ErrorUnauthorized
		}
		if err := s.parties.Delete(ctx, party.Code); err != nil {
			return err
		}
		s.log.Info(ctx, "party dissolved", "code", party.Code)
		return nil
	}

	if presentedSecret != "" {
		return common.ErrorUnauthorized
	}
	return s.parties.RemoveParticipant(ctx, party.Code, userID)
}

// Status returns the party registered under code. Any logged-in user may
// poll a party this way; membership is not required.
func (s *PartyService) Status(ctx context.Context, code string) (*models.Party, error) {
	return s.parties.GetByCode(ctx, code)
}

// UpdateTrack replaces the shared track of the party registered under code.
// Host authority rests entirely on the host secret issued by Start.
func (s *PartyService) UpdateTrack(ctx context.Context, code, presentedSecret string, track *models.Track) error {
	party, err := s.parties.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if !secretMatches(party.HostSecret, presentedSecret) {
		return common.ErrorUnauthorized
	}
	return s.parties.UpdateTrack(ctx, code, track)
}

// OnUserLogout cleans up party state for a user going offline: the host's
// party is dissolved, a member is removed, a user in no party is a no-op.
func (s *PartyService) OnUserLogout(ctx context.Context, userID string) error {
	party, err := s.parties.FindByParticipant(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if party.HostID == userID {
		return s.parties.Delete(ctx, party.Code)
	}
	return s.parties.RemoveParticipant(ctx, party.Code, userID)
}

// detach enforces the one-party-per-user rule before a start or join: a
// current host may not abandon their party implicitly, a plain member is
// silently moved out.
func (s *PartyService) detach(ctx context.Context, userID string) error {
	current, err := s.parties.FindByParticipant(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if current.HostID == userID {
		return common.ErrorAlreadyHosting
	}
	return s.parties.RemoveParticipant(ctx, current.Code, userID)
}

func secretMatches(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
