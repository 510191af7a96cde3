package model

import (
	"time"

	"github.com/google/uuid"
)

const MaxEmergencyContacts = 3

// EmergencyContact is someone notified when the user goes MIA. The email
// channel uses Email; the SMS channel uses Phone and only confirmed contacts.
type EmergencyContact struct {
	ID                  uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID              uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Name                string     `json:"name" gorm:"size:100;not null"`
	Email               *string    `json:"email,omitempty" gorm:"size:320"`
	Phone               *string    `json:"phone,omitempty" gorm:"size:20"`
	IsConfirmed         bool       `json:"is_confirmed" gorm:"not null;default:false"`
	ConfirmationToken   *string    `json:"-" gorm:"size:64;uniqueIndex"`
	ConfirmationExpires *time.Time `json:"-" gorm:"type:timestamptz"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ConfirmationExpired reports whether a pending confirmation link is stale
func (c *EmergencyContact) ConfirmationExpired(now time.Time) bool {
	return c.ConfirmationExpires != nil && c.ConfirmationExpires.Before(now)
}

// EmailAddress returns the contact email or an empty string
func (c *EmergencyContact) EmailAddress() string {
	if c.Email == nil {
		return ""
	}
	return *c.Email
}

// PhoneNumber returns the contact phone or an empty string
func (c *EmergencyContact) PhoneNumber() string {
	if c.Phone == nil {
		return ""
	}
	return *c.Phone
}
