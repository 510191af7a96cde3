package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/quocanhngo/stillalive/internal/service"
)

// respondError maps service errors onto HTTP statuses. Anything unknown is
// a 500 with a generic message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateContact):
		status = http.StatusConflict
	case errors.Is(err, service.ErrConfirmationExpired):
		status = http.StatusGone
	case errors.Is(err, service.ErrInvalidThreshold),
		errors.Is(err, service.ErrInvalidMultiplier),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrContactLimit),
		errors.Is(err, service.ErrNoContacts),
		errors.Is(err, service.ErrMessageTooLong),
		errors.Is(err, service.ErrNoLastWords),
		errors.Is(err, service.ErrNoEmail):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, model.ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(status, model.ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
}

func currentUser(c *gin.Context) *model.User {
	return c.MustGet("user").(*model.User)
}
