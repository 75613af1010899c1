package httpapi

import (
	"crypto/subtle"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
	"github.com/listenalong/backend/internal/server/models"
	"github.com/listenalong/backend/internal/server/services"
)

// ServiceSecretLength is the length of the shared secret the partner overlay
// service presents when reading track data.
const ServiceSecretLength = 96

// OverlayHandler serves the partner overlay integration: a trusted external
// service reads what a user is playing, and clients publish it.
type OverlayHandler struct {
	users         *services.UserService
	guard         *services.SessionGuard
	serviceSecret string
	log           logging.Logger
}

func NewOverlayHandler(users *services.UserService, guard *services.SessionGuard, serviceSecret string, log logging.Logger) *OverlayHandler {
	return &OverlayHandler{
		users:         users,
		guard:         guard,
		serviceSecret: serviceSecret,
		log:           log.With("handler", "overlay"),
	}
}

// Track returns the user's current track to the partner service. A wrong
// service secret reads as 404, the same as an unknown route.
func (h *OverlayHandler) Track(c *gin.Context) {
	id, err := canonicalID(c.Query("uuid"))
	if err != nil {
		RespondError(c, err)
		return
	}

	secret := c.Query("secret")
	if len(secret) != ServiceSecretLength ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(h.serviceSecret)) != 1 {
		h.log.Warn(c.Request.Context(), "overlay read with bad service secret")
		RespondError(c, common.ErrorNotFound)
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	if user.CurrentTrack == nil {
		RespondError(c, fmt.Errorf("%w: user is not playing a track", common.ErrorNotFound))
		return
	}
	RespondOK(c, gin.H{"track": user.CurrentTrack})
}

type overlayUpdateRequest struct {
	UUID   string        `json:"uuid"`
	Secret string        `json:"secret"`
	Track  *models.Track `json:"track"`
}

// Update publishes the caller's current track. Authorized by the caller's
// own session secret.
func (h *OverlayHandler) Update(c *gin.Context) {
	var req overlayUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: bad request body", common.ErrorValidation))
		return
	}

	id, err := canonicalID(req.UUID)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := checkSessionSecret(req.Secret); err != nil {
		RespondError(c, err)
		return
	}
	if _, err := h.guard.Authorize(c.Request.Context(), id, req.Secret); err != nil {
		RespondError(c, err)
		return
	}

	if err := h.users.UpdateTrack(c.Request.Context(), id, req.Track); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "OK"})
}
