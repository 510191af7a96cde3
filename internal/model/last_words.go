package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MaxLastWordsLength                = 500
	DefaultLastWordsDeliveryThreshold = 48
)

// LastWords is the optional farewell message delivered after a completed
// emergency alert. Message is nil when nothing has been saved.
type LastWords struct {
	UserID            uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	Message           *string   `json:"message" gorm:"type:text"`
	DeliveryThreshold int       `json:"delivery_threshold" gorm:"not null;default:48"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (LastWords) TableName() string { return "last_words" }
