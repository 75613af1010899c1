// Package identity talks to the external identity verifier: the service
// that maps an opaque external id to a display name and confirms a one-time
// possession proof. It is the only place ids are normalized; the rest of the
// core always sees the canonical 36-character separator-included form.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
)

// Profile is the verifier's view of a user.
type Profile struct {
	ID          string `json:"uuid"`
	DisplayName string `json:"username"`
}

// Verifier confirms who an external id belongs to.
type Verifier interface {
	// Lookup resolves an external id to its profile, for users the
	// service has never seen before.
	Lookup(ctx context.Context, externalID string) (*Profile, error)

	// CheckPossession confirms the caller currently controls the account:
	// the proof is a one-time value the client placed with the identity
	// provider out of band. common.ErrorUnauthorized on mismatch,
	// common.ErrorUpstream when the provider cannot be reached.
	CheckPossession(ctx context.Context, displayName, proof, externalID string) error
}

// NormalizeID converts any accepted spelling of an external id into the
// canonical 36-character form. Malformed ids fail with
// common.ErrorValidation before any lookup happens.
func NormalizeID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: malformed external id", common.ErrorValidation)
	}
	return id.String(), nil
}

// StripSeparators removes the separator characters from a canonical id.
// The possession endpoint reports ids in this compact spelling.
func StripSeparators(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

// HTTPVerifier implements Verifier against the identity provider's REST
// endpoints.
type HTTPVerifier struct {
	client     *http.Client
	profileURL string // profile lookup base, id appended as a path segment
	sessionURL string // possession check endpoint
	log        logging.Logger
}

func NewHTTPVerifier(client *http.Client, profileURL, sessionURL string, log logging.Logger) *HTTPVerifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPVerifier{
		client:     client,
		profileURL: strings.TrimRight(profileURL, "/"),
		sessionURL: sessionURL,
		log:        log.With("component", "identity_verifier"),
	}
}

func (v *HTTPVerifier) Lookup(ctx context.Context, externalID string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.profileURL+"/"+url.PathEscape(externalID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Error(ctx, "profile lookup failed", "id", externalID, "error", err)
		return nil, fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.log.Error(ctx, "profile lookup returned unexpected status", "id", externalID, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: profile lookup status %d", common.ErrorUpstream, resp.StatusCode)
	}

	profile := &Profile{}
	if err := json.NewDecoder(resp.Body).Decode(profile); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}
	if profile.DisplayName == "" || profile.ID != externalID {
		v.log.Error(ctx, "profile response did not match requested id", "id", externalID, "got", profile.ID)
		return nil, fmt.Errorf("%w: inconsistent profile response", common.ErrorUpstream)
	}
	return profile, nil
}

func (v *HTTPVerifier) CheckPossession(ctx context.Context, displayName, proof, externalID string) error {
	q := url.Values{}
	q.Set("username", displayName)
	q.Set("serverId", proof)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.sessionURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		v.log.Error(ctx, "possession check failed", "id", externalID, "error", err)
		return fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}
	defer resp.Body.Close()

	// The provider answers 204 with an empty body when the proof is stale
	// or was never placed.
	if resp.StatusCode == http.StatusNoContent {
		return common.ErrorUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: possession check status %d", common.ErrorUpstream, resp.StatusCode)
	}

	var session struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorUpstream, err)
	}

	if session.ID != StripSeparators(externalID) || session.Name != displayName {
		v.log.Warn(ctx, "possession response mismatch", "id", externalID, "got", session.ID)
		return common.ErrorUnauthorized
	}
	return nil
}
