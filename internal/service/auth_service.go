package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/redis/go-redis/v9"
)

// BlacklistPrefix namespaces revoked tokens in Redis
const BlacklistPrefix = "blacklist:"

type profileStore interface {
	UpsertProfile(ctx context.Context, id uuid.UUID, email, name string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	AddDevice(ctx context.Context, userID uuid.UUID, token string, deviceType string) error
}

// AuthService keeps the local profile in step with token claims and
// handles token revocation. Tokens themselves are issued elsewhere.
type AuthService struct {
	userRepo profileStore
	rdb      *redis.Client
}

func NewAuthService(userRepo profileStore, rdb *redis.Client) *AuthService {
	return &AuthService{userRepo: userRepo, rdb: rdb}
}

// SyncProfile creates or refreshes the user row from the token claims
func (s *AuthService) SyncProfile(ctx context.Context, userID uuid.UUID, email, name string) (*model.User, error) {
	return s.userRepo.UpsertProfile(ctx, userID, email, name)
}

// GetProfile returns the caller's profile
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

// RegisterDevice stores an FCM token for check-in reminders
func (s *AuthService) RegisterDevice(ctx context.Context, userID uuid.UUID, req model.RegisterDeviceRequest) error {
	return s.userRepo.AddDevice(ctx, userID, req.FCMToken, req.DeviceType)
}

// Logout revokes a token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, tokenString string, expiresAt time.Time) error {
	expiresIn := time.Until(expiresAt)
	if expiresIn <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, BlacklistPrefix+tokenString, "revoked", expiresIn).Err()
}
