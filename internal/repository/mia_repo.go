package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MiaRepository persists both idempotency ledgers: the per-user
// notification markers and the per-recipient delivery rows.
type MiaRepository struct {
	db *gorm.DB
}

func NewMiaRepository(db *gorm.DB) *MiaRepository {
	return &MiaRepository{db: db}
}

// GetState returns the user's notification markers, or nil
func (r *MiaRepository) GetState(ctx context.Context, userID uuid.UUID) (*model.MiaNotificationState, error) {
	var s model.MiaNotificationState
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	return notFoundAsNil(&s, err)
}

// mark upserts one marker column, leaving the others untouched
func (r *MiaRepository) mark(ctx context.Context, row *model.MiaNotificationState, column string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{column, "updated_at"}),
	}).Create(row).Error
}

func (r *MiaRepository) MarkPreAlert(ctx context.Context, userID, checkInID uuid.UUID) error {
	return r.mark(ctx, &model.MiaNotificationState{UserID: userID, PreAlertForCheckInID: &checkInID}, "pre_alert_for_check_in_id")
}

func (r *MiaRepository) MarkEmergency(ctx context.Context, userID, checkInID uuid.UUID) error {
	return r.mark(ctx, &model.MiaNotificationState{UserID: userID, EmergencyForCheckInID: &checkInID}, "emergency_for_check_in_id")
}

func (r *MiaRepository) MarkLastWords(ctx context.Context, userID, checkInID uuid.UUID) error {
	return r.mark(ctx, &model.MiaNotificationState{UserID: userID, LastWordsForCheckInID: &checkInID}, "last_words_for_check_in_id")
}

// GetDelivery returns the recorded outcome for key, or nil
func (r *MiaRepository) GetDelivery(ctx context.Context, key model.DeliveryKey) (*model.AlertDelivery, error) {
	var d model.AlertDelivery
	err := r.db.WithContext(ctx).
		Where("check_in_id = ? AND contact_id = ? AND type = ?", key.CheckInID, key.ContactID, key.Type).
		First(&d).Error
	return notFoundAsNil(&d, err)
}

// ErrUnknownAlertType rejects ledger rows for a class nothing sends
var ErrUnknownAlertType = errors.New("unknown alert type")

// UpsertDelivery records a send outcome, overwriting any earlier attempt
// for the same key
func (r *MiaRepository) UpsertDelivery(ctx context.Context, d *model.AlertDelivery) error {
	if !d.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAlertType, d.Type)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "check_in_id"}, {Name: "contact_id"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"ok", "error", "updated_at"}),
	}).Create(d).Error
}
