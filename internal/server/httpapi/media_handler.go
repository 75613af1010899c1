package httpapi

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
	"github.com/listenalong/backend/internal/server/mediaauth"
	"github.com/listenalong/backend/internal/server/services"
)

// MediaHandler proxies OAuth token grants for logged-in users. Clients never
// see the provider client secret; they only hand over their session
// credentials and the grant material.
type MediaHandler struct {
	exchanger mediaauth.TokenExchanger
	guard     *services.SessionGuard
	clientID  string
	log       logging.Logger
}

func NewMediaHandler(exchanger mediaauth.TokenExchanger, guard *services.SessionGuard, clientID string, log logging.Logger) *MediaHandler {
	return &MediaHandler{
		exchanger: exchanger,
		guard:     guard,
		clientID:  clientID,
		log:       log.With("handler", "media"),
	}
}

func (h *MediaHandler) authorize(c *gin.Context, rawID, secret string) bool {
	id, err := canonicalID(rawID)
	if err != nil {
		RespondError(c, err)
		return false
	}
	if err := checkSessionSecret(secret); err != nil {
		RespondError(c, err)
		return false
	}
	if _, err := h.guard.Authorize(c.Request.Context(), id, secret); err != nil {
		RespondError(c, err)
		return false
	}
	return true
}

type mediaTokenRequest struct {
	UUID   string `json:"uuid"`
	Secret string `json:"secret"`
	Code   string `json:"code"`
}

func (h *MediaHandler) Token(c *gin.Context) {
	var req mediaTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: bad request body", common.ErrorValidation))
		return
	}
	if req.Code == "" {
		RespondError(c, fmt.Errorf("%w: missing authorization code", common.ErrorValidation))
		return
	}
	if !h.authorize(c, req.UUID, req.Secret) {
		return
	}

	token, err := h.exchanger.Exchange(c.Request.Context(), req.Code)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, token)
}

type mediaRefreshRequest struct {
	UUID         string `json:"uuid"`
	Secret       string `json:"secret"`
	RefreshToken string `json:"refresh_token"`
}

func (h *MediaHandler) Refresh(c *gin.Context) {
	var req mediaRefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: bad request body", common.ErrorValidation))
		return
	}
	if req.RefreshToken == "" {
		RespondError(c, fmt.Errorf("%w: missing refresh token", common.ErrorValidation))
		return
	}
	if !h.authorize(c, req.UUID, req.Secret) {
		return
	}

	token, err := h.exchanger.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, token)
}

type mediaClientIDRequest struct {
	UUID   string `json:"uuid"`
	Secret string `json:"secret"`
}

func (h *MediaHandler) ClientID(c *gin.Context) {
	var req mediaClientIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: bad request body", common.ErrorValidation))
		return
	}
	if !h.authorize(c, req.UUID, req.Secret) {
		return
	}
	RespondOK(c, gin.H{"clientID": h.clientID})
}
