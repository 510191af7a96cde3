package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Handlers groups every API handler for route registration
type Handlers struct {
	Auth      *AuthHandler
	CheckIns  *CheckInHandler
	Settings  *SettingsHandler
	Contacts  *ContactHandler
	LastWords *LastWordsHandler
	Mia       *MiaHandler
}

// Register mounts the public and protected routes on api. protected runs
// before every authenticated route.
func (h *Handlers) Register(api *gin.RouterGroup, protected ...gin.HandlerFunc) {
	api.GET("/contacts/confirm", h.Contacts.Confirm)

	p := api.Group("")
	p.Use(protected...)
	{
		p.GET("/me", h.Auth.GetProfile)
		p.POST("/auth/logout", h.Auth.Logout)
		p.POST("/devices", h.Auth.RegisterDevice)

		p.POST("/checkins", h.CheckIns.Create)
		p.GET("/checkins", h.CheckIns.List)

		p.GET("/settings/mia-threshold", h.Settings.GetThreshold)
		p.PUT("/settings/mia-threshold", h.Settings.UpdateThreshold)
		p.GET("/settings/emergency-mode", h.Settings.GetEmergencyMode)
		p.PUT("/settings/emergency-mode", h.Settings.UpdateEmergencyMode)

		p.GET("/contacts", h.Contacts.List)
		p.POST("/contacts", h.Contacts.Create)
		p.POST("/contacts/test-alert", h.Contacts.TestAlert)
		p.PATCH("/contacts/:id", h.Contacts.Update)
		p.DELETE("/contacts/:id", h.Contacts.Delete)

		p.GET("/last-words", h.LastWords.Get)
		p.PUT("/last-words", h.LastWords.Update)
		p.DELETE("/last-words", h.LastWords.Delete)
		p.POST("/last-words/test-send", h.LastWords.TestSend)

		p.GET("/mia/status", h.Mia.Status)
	}
}

// Health reports liveness
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "stillalive-api",
		"time":    time.Now().Format(time.RFC3339),
	})
}
