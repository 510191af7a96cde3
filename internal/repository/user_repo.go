package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles database operations for User
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UpsertProfile creates the user on first sight and keeps name and email in
// step with the identity provider afterwards
func (r *UserRepository) UpsertProfile(ctx context.Context, id uuid.UUID, email, name string) (*model.User, error) {
	user := model.User{ID: id, Email: email, Name: name}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID finds a user by UUID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListAll returns every user in creation order
func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error
	return users, err
}

// AddDevice adds or updates a device token
func (r *UserRepository) AddDevice(ctx context.Context, userID uuid.UUID, token string, deviceType string) error {
	now := time.Now()
	device := model.UserDevice{
		UserID:       userID,
		FCMToken:     token,
		DeviceType:   deviceType,
		LastActiveAt: now,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "fcm_token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_active_at": now,
			"device_type":    deviceType,
		}),
	}).Create(&device).Error
}

// GetUserDevices gets all devices for a user
func (r *UserRepository) GetUserDevices(ctx context.Context, userID uuid.UUID) ([]model.UserDevice, error) {
	var devices []model.UserDevice
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&devices).Error
	return devices, err
}

// RemoveDevice deletes a device token FCM no longer accepts
func (r *UserRepository) RemoveDevice(ctx context.Context, userID uuid.UUID, token string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND fcm_token = ?", userID, token).
		Delete(&model.UserDevice{}).Error
}

// notFoundAsNil turns a missing row into (nil, nil) for optional lookups
func notFoundAsNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
