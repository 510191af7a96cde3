package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRepository handles database operations for Settings
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the user's settings, or nil if none were saved
func (r *SettingsRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Settings, error) {
	var s model.Settings
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	return notFoundAsNil(&s, err)
}

// Save inserts or replaces the user's settings row
func (r *SettingsRepository) Save(ctx context.Context, s *model.Settings) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"mia_threshold_hrs",
			"emergency_mode_enabled",
			"emergency_mode_end_time",
			"emergency_mode_multiplier",
			"updated_at",
		}),
	}).Create(s).Error
}

// ExpireEmergencyMode switches emergency mode off and restores its defaults
func (r *SettingsRepository) ExpireEmergencyMode(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Settings{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"emergency_mode_enabled":    false,
			"emergency_mode_end_time":   nil,
			"emergency_mode_multiplier": model.DefaultEmergencyModeMultiplier,
		}).Error
}
