package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/mia"
)

// StatusReader evaluates a user's episode without side effects
type StatusReader interface {
	Status(ctx context.Context, userID uuid.UUID) (*mia.Status, error)
}

type MiaHandler struct {
	engine StatusReader
}

func NewMiaHandler(engine StatusReader) *MiaHandler {
	return &MiaHandler{engine: engine}
}

// Status godoc
// @Summary Current MIA phase, deadlines and sent markers
// @Tags MIA
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.MiaStatusResponse
// @Router /mia/status [get]
func (h *MiaHandler) Status(c *gin.Context) {
	status, err := h.engine.Status(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status.Response())
}
