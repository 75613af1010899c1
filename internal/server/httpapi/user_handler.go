package httpapi

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
	"github.com/listenalong/backend/internal/server/services"
)

// UserHandler serves registration, logout and the aggregate stats endpoint.
type UserHandler struct {
	users *services.UserService
	guard *services.SessionGuard
	log   logging.Logger
}

func NewUserHandler(users *services.UserService, guard *services.SessionGuard, log logging.Logger) *UserHandler {
	return &UserHandler{users: users, guard: guard, log: log.With("handler", "user")}
}

type registerRequest struct {
	UUID     string `json:"uuid"`
	Mod      string `json:"mod"`
	ServerID string `json:"serverID"`
}

type secretResponse struct {
	Secret string `json:"secret"`
}

// Register verifies account possession and hands out a session secret,
// creating the user on first contact and rotating the secret on every
// subsequent call.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: bad request body", common.ErrorValidation))
		return
	}

	id, err := canonicalID(req.UUID)
	if err != nil {
		RespondError(c, err)
		return
	}
	if req.Mod == "" {
		RespondError(c, fmt.Errorf("%w: missing mod id", common.ErrorValidation))
		return
	}
	if req.ServerID == "" {
		RespondError(c, fmt.Errorf("%w: missing serverID", common.ErrorValidation))
		return
	}

	secret, err := h.users.Authenticate(c.Request.Context(), id, req.Mod, req.ServerID)
	if err != nil {
		h.log.Warn(c.Request.Context(), "registration declined", "id", id, "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, secretResponse{Secret: secret})
}

type offlineRequest struct {
	UUID   string `json:"uuid"`
	Secret string `json:"secret"`
}

// Offline invalidates the caller's session secret and removes them from any
// party they are in.
func (h *UserHandler) Offline(c *gin.Context) {
	var req offlineRequest
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
	if err := h.users.Logout(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "OK"})
}

type statsResponse struct {
	TotalUsers  int64 `json:"totalUsers"`
	OnlineUsers int64 `json:"onlineUsers"`
}

func (h *UserHandler) Stats(c *gin.Context) {
	total, online, err := h.users.Stats(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, statsResponse{TotalUsers: total, OnlineUsers: online})
}
