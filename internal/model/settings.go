package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMiaThresholdHrs         = 24
	DefaultEmergencyModeMultiplier = 2
)

// Settings holds a user's MIA threshold and emergency-mode window.
// When EmergencyModeEnabled is false, EmergencyModeEndTime is nil and the
// multiplier is back at its default.
type Settings struct {
	UserID                  uuid.UUID  `json:"user_id" gorm:"type:uuid;primaryKey"`
	MiaThresholdHrs         int        `json:"mia_threshold_hrs" gorm:"not null;default:24"`
	EmergencyModeEnabled    bool       `json:"emergency_mode_enabled" gorm:"not null;default:false"`
	EmergencyModeEndTime    *time.Time `json:"emergency_mode_end_time" gorm:"type:timestamptz"`
	EmergencyModeMultiplier int        `json:"emergency_mode_multiplier" gorm:"not null;default:2"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

func (Settings) TableName() string { return "user_settings" }

// DefaultSettings returns the settings a user has before saving any
func DefaultSettings(userID uuid.UUID) Settings {
	return Settings{
		UserID:                  userID,
		MiaThresholdHrs:         DefaultMiaThresholdHrs,
		EmergencyModeMultiplier: DefaultEmergencyModeMultiplier,
	}
}
