package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"go.uber.org/zap"
)

// ProfileSyncer creates or refreshes the local user row
type ProfileSyncer interface {
	SyncProfile(ctx context.Context, userID uuid.UUID, email, name string) (*model.User, error)
}

// ProfileMiddleware upserts the caller from the token claims and stores the
// row under "user". It must run after AuthMiddleware.
func ProfileMiddleware(profiles ProfileSyncer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.MustGet("user_id").(uuid.UUID)

		user, err := profiles.SyncProfile(c.Request.Context(), userID, c.GetString("email"), c.GetString("name"))
		if err != nil {
			logger.Error("profile sync failed", zap.String("user_id", userID.String()), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
