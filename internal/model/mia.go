package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertType names a notification class recorded in the delivery ledger
type AlertType string

const (
	AlertTypeEmergencyEmail AlertType = "EMERGENCY_EMAIL"
	AlertTypeEmergencySMS   AlertType = "EMERGENCY_SMS"
	AlertTypeLastWordsEmail AlertType = "LAST_WORDS_EMAIL"
)

// Valid reports whether t is a class the sweep actually records
func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeEmergencyEmail, AlertTypeEmergencySMS, AlertTypeLastWordsEmail:
		return true
	}
	return false
}

// MiaNotificationState records, per user, which check-in each
// notification class has already fired for.
type MiaNotificationState struct {
	UserID                uuid.UUID  `json:"user_id" gorm:"type:uuid;primaryKey"`
	PreAlertForCheckInID  *uuid.UUID `json:"pre_alert_for_check_in_id" gorm:"type:uuid"`
	EmergencyForCheckInID *uuid.UUID `json:"emergency_for_check_in_id" gorm:"type:uuid"`
	LastWordsForCheckInID *uuid.UUID `json:"last_words_for_check_in_id" gorm:"type:uuid"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

func (MiaNotificationState) TableName() string { return "mia_notifications" }

// PreAlertSentFor reports whether the pre-alert already fired for checkInID
func (s *MiaNotificationState) PreAlertSentFor(checkInID uuid.UUID) bool {
	return s != nil && s.PreAlertForCheckInID != nil && *s.PreAlertForCheckInID == checkInID
}

// EmergencySentFor reports whether the emergency alert completed for checkInID
func (s *MiaNotificationState) EmergencySentFor(checkInID uuid.UUID) bool {
	return s != nil && s.EmergencyForCheckInID != nil && *s.EmergencyForCheckInID == checkInID
}

// LastWordsSentFor reports whether last words were delivered for checkInID
func (s *MiaNotificationState) LastWordsSentFor(checkInID uuid.UUID) bool {
	return s != nil && s.LastWordsForCheckInID != nil && *s.LastWordsForCheckInID == checkInID
}

// DeliveryKey identifies one recipient of one notification class for one check-in
type DeliveryKey struct {
	CheckInID uuid.UUID
	ContactID uuid.UUID
	Type      AlertType
}

// AlertDelivery is the per-recipient outcome of a send attempt
type AlertDelivery struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	CheckInID uuid.UUID `json:"check_in_id" gorm:"type:uuid;not null;uniqueIndex:idx_alert_delivery_key,priority:1"`
	ContactID uuid.UUID `json:"contact_id" gorm:"type:uuid;not null;uniqueIndex:idx_alert_delivery_key,priority:2"`
	Type      AlertType `json:"type" gorm:"size:32;not null;uniqueIndex:idx_alert_delivery_key,priority:3"`
	OK        bool      `json:"ok" gorm:"column:ok;not null"`
	Error     *string   `json:"error,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the natural idempotency key of the row
func (d *AlertDelivery) Key() DeliveryKey {
	return DeliveryKey{CheckInID: d.CheckInID, ContactID: d.ContactID, Type: d.Type}
}
