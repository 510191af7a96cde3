package model

import (
	"time"

	"github.com/google/uuid"
)

// CheckIn is an append-only "still alive" record. The most recent row per
// user anchors the current silence episode.
type CheckIn struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index:idx_check_ins_user_time,priority:1"`
	CheckInTime time.Time `json:"check_in_time" gorm:"type:timestamptz;not null;index:idx_check_ins_user_time,priority:2,sort:desc"`
	StreakCount int       `json:"streak_count" gorm:"not null;default:1"`
	CreatedAt   time.Time `json:"created_at"`
}
