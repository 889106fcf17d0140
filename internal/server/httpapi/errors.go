package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/communityfeed/internal/common"
)

var errorStatusMap = []struct {
	target error
	status int
}{
	{common.ErrorValidation, http.StatusBadRequest},
	{common.ErrNoToken, http.StatusUnauthorized},
	{common.ErrInvalidToken, http.StatusUnauthorized},
	{common.ErrTokenExpired, http.StatusUnauthorized},
	{common.ErrInvalidCredentials, http.StatusUnauthorized},
	{common.ErrorUnauthorized, http.StatusUnauthorized},
	{common.ErrorAlreadyExists, http.StatusConflict},
	{common.ErrorNotFound, http.StatusNotFound},
}

// errorResponse maps err onto a status and the message shown to clients.
// Authentication failures get fixed messages so they do not reveal which
// check failed.
func errorResponse(err error) (int, string) {
	status := http.StatusInternalServerError
	for _, e := range errorStatusMap {
		if errors.Is(err, e.target) {
			status = e.status
			break
		}
	}

	switch status {
	case http.StatusInternalServerError:
		return status, "internal error"
	case http.StatusUnauthorized:
		switch {
		case errors.Is(err, common.ErrNoToken):
			return status, "no token"
		case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
			return status, "invalid token"
		case errors.Is(err, common.ErrInvalidCredentials):
			return status, "invalid"
		default:
			return status, "unauthorized"
		}
	}
	return status, err.Error()
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, msg := errorResponse(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"error", err.Error())
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
