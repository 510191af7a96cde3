package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/quocanhngo/stillalive/internal/service"
)

type SettingsHandler struct {
	settings *service.SettingsService
}

func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetThreshold godoc
// @Summary Get MIA threshold
// @Tags Settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.ThresholdResponse
// @Router /settings/mia-threshold [get]
func (h *SettingsHandler) GetThreshold(c *gin.Context) {
	hrs, err := h.settings.GetThreshold(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ThresholdResponse{MiaThresholdHrs: hrs})
}

// UpdateThreshold godoc
// @Summary Set MIA threshold (12, 24, 36 or 48 hours)
// @Tags Settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.UpdateThresholdRequest true "Threshold"
// @Success 200 {object} model.ThresholdResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /settings/mia-threshold [put]
func (h *SettingsHandler) UpdateThreshold(c *gin.Context) {
	var req model.UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	hrs, err := h.settings.UpdateThreshold(c.Request.Context(), currentUser(c).ID, req.MiaThresholdHrs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ThresholdResponse{MiaThresholdHrs: hrs})
}

// GetEmergencyMode godoc
// @Summary Get emergency mode
// @Tags Settings
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.EmergencyModeResponse
// @Router /settings/emergency-mode [get]
func (h *SettingsHandler) GetEmergencyMode(c *gin.Context) {
	resp, err := h.settings.GetEmergencyMode(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateEmergencyMode godoc
// @Summary Enable or disable emergency mode
// @Description While enabled, no alerts are sent until threshold x multiplier hours have passed.
// @Tags Settings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.UpdateEmergencyModeRequest true "Emergency mode"
// @Success 200 {object} model.EmergencyModeResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /settings/emergency-mode [put]
func (h *SettingsHandler) UpdateEmergencyMode(c *gin.Context) {
	var req model.UpdateEmergencyModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.settings.UpdateEmergencyMode(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
