package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/stillalive/internal/service"
)

type CheckInHandler struct {
	checkIns *service.CheckInService
}

func NewCheckInHandler(checkIns *service.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkIns: checkIns}
}

// Create godoc
// @Summary Check in ("I'm still alive")
// @Tags Check-ins
// @Security BearerAuth
// @Produce json
// @Success 201 {object} model.CheckInResponse
// @Router /checkins [post]
func (h *CheckInHandler) Create(c *gin.Context) {
	resp, err := h.checkIns.CheckIn(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Latest check-ins and current streak
// @Tags Check-ins
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.CheckInResponse
// @Router /checkins [get]
func (h *CheckInHandler) List(c *gin.Context) {
	resp, err := h.checkIns.Recent(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
