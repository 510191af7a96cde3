package mia

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
)

// Store is the persistence contract the engine runs against. Single-row
// lookups return (nil, nil) when the row does not exist.
type Store interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetSettings(ctx context.Context, userID uuid.UUID) (*model.Settings, error)
	// ExpireEmergencyMode disables emergency mode, clears its end time and
	// resets the multiplier.
	ExpireEmergencyMode(ctx context.Context, userID uuid.UUID) error
	LatestCheckIn(ctx context.Context, userID uuid.UUID) (*model.CheckIn, error)

	GetNotificationState(ctx context.Context, userID uuid.UUID) (*model.MiaNotificationState, error)
	MarkPreAlert(ctx context.Context, userID, checkInID uuid.UUID) error
	MarkEmergency(ctx context.Context, userID, checkInID uuid.UUID) error
	MarkLastWords(ctx context.Context, userID, checkInID uuid.UUID) error

	ListContacts(ctx context.Context, userID uuid.UUID, confirmedOnly bool) ([]model.EmergencyContact, error)
	GetAlertDelivery(ctx context.Context, key model.DeliveryKey) (*model.AlertDelivery, error)
	UpsertAlertDelivery(ctx context.Context, d *model.AlertDelivery) error

	GetLastWords(ctx context.Context, userID uuid.UUID) (*model.LastWords, error)
}

// EmailSender delivers a plain-text email synchronously
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender delivers a text message synchronously
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Pusher nudges a user's registered devices. Optional.
type Pusher interface {
	SendCheckInReminder(ctx context.Context, userID uuid.UUID, title, body string) error
}
