package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listenalong/backend/internal/common"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Message string `json:"message"`
}

// RespondOK writes payload with a 200 status.
func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondError translates a service error into a status code and a JSON
// body. Every guarded failure lands here so no error ever surfaces as a
// success-shaped response.
func RespondError(c *gin.Context, err error) {
	status := statusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// internal detail stays in the logs
		msg = "internal server error"
	}
	c.JSON(status, ErrorResponse{Message: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorAlreadyExists), errors.Is(err, common.ErrorAlreadyHosting):
		return http.StatusConflict
	case errors.Is(err, common.ErrorUpstream):
		return http.StatusBadGateway
	case errors.Is(err, common.ErrorNamespaceExhausted):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
