package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/mia"
	"github.com/quocanhngo/stillalive/internal/model"
	"gorm.io/gorm"
)

// Gateway exposes the repositories as the sweep engine's Store
type Gateway struct {
	Users     *UserRepository
	Settings  *SettingsRepository
	CheckIns  *CheckInRepository
	Contacts  *ContactRepository
	LastWords *LastWordsRepository
	Mia       *MiaRepository
}

var _ mia.Store = (*Gateway)(nil)

// NewGateway wires every repository onto one database handle
func NewGateway(db *gorm.DB, lastWords *LastWordsRepository) *Gateway {
	return &Gateway{
		Users:     NewUserRepository(db),
		Settings:  NewSettingsRepository(db),
		CheckIns:  NewCheckInRepository(db),
		Contacts:  NewContactRepository(db),
		LastWords: lastWords,
		Mia:       NewMiaRepository(db),
	}
}

func (g *Gateway) ListUsers(ctx context.Context) ([]model.User, error) {
	return g.Users.ListAll(ctx)
}

func (g *Gateway) GetSettings(ctx context.Context, userID uuid.UUID) (*model.Settings, error) {
	return g.Settings.Get(ctx, userID)
}

func (g *Gateway) ExpireEmergencyMode(ctx context.Context, userID uuid.UUID) error {
	return g.Settings.ExpireEmergencyMode(ctx, userID)
}

func (g *Gateway) LatestCheckIn(ctx context.Context, userID uuid.UUID) (*model.CheckIn, error) {
	return g.CheckIns.Latest(ctx, userID)
}

func (g *Gateway) GetNotificationState(ctx context.Context, userID uuid.UUID) (*model.MiaNotificationState, error) {
	return g.Mia.GetState(ctx, userID)
}

func (g *Gateway) MarkPreAlert(ctx context.Context, userID, checkInID uuid.UUID) error {
	return g.Mia.MarkPreAlert(ctx, userID, checkInID)
}

func (g *Gateway) MarkEmergency(ctx context.Context, userID, checkInID uuid.UUID) error {
	return g.Mia.MarkEmergency(ctx, userID, checkInID)
}

func (g *Gateway) MarkLastWords(ctx context.Context, userID, checkInID uuid.UUID) error {
	return g.Mia.MarkLastWords(ctx, userID, checkInID)
}

func (g *Gateway) ListContacts(ctx context.Context, userID uuid.UUID, confirmedOnly bool) ([]model.EmergencyContact, error) {
	return g.Contacts.List(ctx, userID, confirmedOnly)
}

func (g *Gateway) GetAlertDelivery(ctx context.Context, key model.DeliveryKey) (*model.AlertDelivery, error) {
	return g.Mia.GetDelivery(ctx, key)
}

func (g *Gateway) UpsertAlertDelivery(ctx context.Context, d *model.AlertDelivery) error {
	return g.Mia.UpsertDelivery(ctx, d)
}

func (g *Gateway) GetLastWords(ctx context.Context, userID uuid.UUID) (*model.LastWords, error) {
	return g.LastWords.Get(ctx, userID)
}
