package httpapi

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/listenalong/backend/internal/common"
	"github.com/listenalong/backend/internal/logging"
	"github.com/listenalong/backend/internal/server/models"
	"github.com/listenalong/backend/internal/server/services"
)

// PartyHandler serves the party lifecycle endpoints. Every route first
// authorizes the caller's session secret, then delegates to the party
// service; host authority is the service's concern, not the handler's.
type PartyHandler struct {
	parties *services.PartyService
	guard   *services.SessionGuard
	log     logging.Logger
}

func NewPartyHandler(parties *services.PartyService, guard *services.SessionGuard, log logging.Logger) *PartyHandler {
	return &PartyHandler{parties: parties, guard: guard, log: log.With("handler", "party")}
}

// sessionRequest carries the credential pair every party route requires.
type sessionRequest struct {
	UUID   string `json:"uuid"`
	Secret string `json:"secret"`
}

// authorize validates and resolves the credential pair, responding on
// failure. The returned id is canonical; ok reports whether to continue.
func (h *PartyHandler) authorize(c *gin.Context, req sessionRequest) (string, bool) {
	id, err := canonicalID(req.UUID)
	if err != nil {
		RespondError(c, err)
		return "", false
	}
	if err := checkSessionSecret(req.Secret); err != nil {
		RespondError(c, err)
		return "", false
	}
	if _, err := h.guard.Authorize(c.Request.Context(), id, req.Secret); err != nil {
		RespondError(c, err)
		return "", false
	}
	return id, true
}

type partyStartRequest struct {
	sessionRequest
	CurrentTrack *models.Track `json:"currentTrack"`
}

type partyStartResponse struct {
	Code   string `json:"code"`
	Secret string `json:"secret"`
}

func (h *PartyHandler) Start(c *gin.Context) {
	var req partyStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: bad request body", common.ErrorValidation))
		return
	}
	id, ok := h.authorize(c, req.sessionRequest)
	if !ok {
		return
	}

	code, hostSecret, err := h.parties.Start(c.Request.Context(), id, req.CurrentTrack)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, partyStartResponse{Code: code, Secret: hostSecret})
}

type partyJoinRequest struct {
	sessionRequest
	PartyCode string `json:"partyCode"`
}

func (h *PartyHandler) Join(c *gin.Context) {
	var req partyJoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: bad request body", common.ErrorValidation))
		return
	}
	if err := checkPartyCode(req.PartyCode); err != nil {
		RespondError(c, err)
		return
	}
	id, ok := h.authorize(c, req.sessionRequest)
	if !ok {
		return
	}

	hostID, err := h.parties.Join(c.Request.Context(), req.PartyCode, id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"host": hostID})
}

type partyLeaveRequest struct {
	sessionRequest
	PartyCode   string `json:"partyCode"`
	PartySecret string `json:"partySecret"`
}

func (h *PartyHandler) Leave(c *gin.Context) {
	var req partyLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: bad request body", common.ErrorValidation))
		return
	}
	if err := checkPartyCode(req.PartyCode); err != nil {
		RespondError(c, err)
		return
	}
	id, ok := h.authorize(c, req.sessionRequest)
	if !ok {
		return
	}

	if err := h.parties.Leave(c.Request.Context(), id, req.PartyCode, req.PartySecret); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "OK"})
}

type partyStatusResponse struct {
	Code         string        `json:"code"`
	Host         string        `json:"host"`
	Participants []string      `json:"participants"`
	CurrentTrack *models.Track `json:"currentTrack,omitempty"`
}

type partyStatusRequest struct {
	sessionRequest
	PartyCode string `json:"partyCode"`
}

func (h *PartyHandler) Status(c *gin.Context) {
	var req partyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: bad request body", common.ErrorValidation))
		return
	}
	if err := checkPartyCode(req.PartyCode); err != nil {
		RespondError(c, err)
		return
	}
	if _, ok := h.authorize(c, req.sessionRequest); !ok {
		return
	}

	party, err := h.parties.Status(c.Request.Context(), req.PartyCode)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, partyStatusResponse{
		Code:         party.Code,
		Host:         party.HostID,
		Participants: party.Participants,
		CurrentTrack: party.CurrentTrack,
	})
}

type partyUpdateRequest struct {
	sessionRequest
	PartyCode    string        `json:"partyCode"`
	PartySecret  string        `json:"partySecret"`
	CurrentTrack *models.Track `json:"currentTrack"`
}

func (h *PartyHandler) Update(c *gin.Context) {
	var req partyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, fmt.Errorf("%w: bad request body", common.ErrorValidation))
		return
	}
	if err := checkPartyCode(req.PartyCode); err != nil {
		RespondError(c, err)
		return
	}
	if err := checkSessionSecret(req.PartySecret); err != nil {
		RespondError(c, err)
		return
	}
	if _, ok := h.authorize(c, req.sessionRequest); !ok {
		return
	}

	if err := h.parties.UpdateTrack(c.Request.Context(), req.PartyCode, req.PartySecret, req.CurrentTrack); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "OK"})
}
