package notification

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// DeviceStore lists and prunes a user's registered push tokens
type DeviceStore interface {
	GetUserDevices(ctx context.Context, userID uuid.UUID) ([]model.UserDevice, error)
	RemoveDevice(ctx context.Context, userID uuid.UUID, token string) error
}

type multicastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// NotificationService handles FCM notifications
type NotificationService struct {
	client  multicastClient
	devices DeviceStore
	logger  *zap.Logger
}

// NewNotificationService creates a new FCM notification service. It returns
// nil when credentials are missing or Firebase cannot be initialized, which
// disables pushes without blocking startup.
func NewNotificationService(ctx context.Context, credentialsFile string, devices DeviceStore, logger *zap.Logger) *NotificationService {
	if credentialsFile == "" {
		logger.Warn("firebase credentials not provided, push notifications disabled")
		return nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		logger.Warn("failed to initialize firebase app, push notifications disabled", zap.Error(err))
		return nil
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		logger.Warn("failed to get messaging client, push notifications disabled", zap.Error(err))
		return nil
	}

	logger.Info("firebase FCM initialized")
	return &NotificationService{client: client, devices: devices, logger: logger}
}

// SendCheckInReminder pushes a check-in nudge to every device of the user.
// Tokens FCM reports as unregistered are removed.
func (s *NotificationService) SendCheckInReminder(ctx context.Context, userID uuid.UUID, title, body string) error {
	if s == nil || s.client == nil {
		return nil
	}

	devices, err := s.devices.GetUserDevices(ctx, userID)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.FCMToken)
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type": "check_in_reminder",
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ClickAction: "FLUTTER_NOTIFICATION_CLICK",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	br, err := s.client.SendEachForMulticast(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending multicast message: %w", err)
	}

	if br.FailureCount > 0 {
		for idx, resp := range br.Responses {
			if resp.Success {
				continue
			}
			s.logger.Warn("fcm delivery failed",
				zap.String("user_id", userID.String()),
				zap.Int("device", idx),
				zap.Error(resp.Error),
			)
			if messaging.IsUnregistered(resp.Error) {
				if err := s.devices.RemoveDevice(ctx, userID, tokens[idx]); err != nil {
					s.logger.Warn("failed to remove stale device", zap.Error(err))
				}
			}
		}
	}

	return nil
}
