package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/quocanhngo/stillalive/internal/service"
)

// AuthHandler handles profile, session and device endpoints
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// GetProfile godoc
// @Summary Get current user profile
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.UserResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).ToResponse())
}

// Logout godoc
// @Summary Revoke the current access token
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.SuccessResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString("token")
	expiresAt := c.GetTime("token_expires_at")
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(24 * time.Hour)
	}

	if err := h.authService.Logout(c.Request.Context(), token, expiresAt); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Logged out successfully"})
}

// RegisterDevice godoc
// @Summary Register an FCM device token for check-in reminders
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.RegisterDeviceRequest true "Device"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /devices [post]
func (h *AuthHandler) RegisterDevice(c *gin.Context) {
	var req model.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.authService.RegisterDevice(c.Request.Context(), currentUser(c).ID, req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Device registered"})
}
