package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"github.com/quocanhngo/stillalive/pkg/sealer"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LastWordsRepository stores last words, sealing the message at rest when a
// sealer is configured. Rows written before sealing was enabled are read
// back unchanged.
type LastWordsRepository struct {
	db     *gorm.DB
	sealer *sealer.Sealer
}

func NewLastWordsRepository(db *gorm.DB, s *sealer.Sealer) *LastWordsRepository {
	return &LastWordsRepository{db: db, sealer: s}
}

// Get returns the user's last words with the message opened, or nil
func (r *LastWordsRepository) Get(ctx context.Context, userID uuid.UUID) (*model.LastWords, error) {
	var lw model.LastWords
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&lw).Error
	found, err := notFoundAsNil(&lw, err)
	if found == nil || err != nil {
		return found, err
	}

	if found.Message != nil && sealer.IsSealed(*found.Message) {
		if r.sealer == nil {
			return nil, fmt.Errorf("last words for %s are sealed but no key is configured", userID)
		}
		plain, err := r.sealer.Open(*found.Message)
		if err != nil {
			return nil, fmt.Errorf("open last words: %w", err)
		}
		found.Message = &plain
	}
	return found, nil
}

// Save upserts the message and delivery threshold
func (r *LastWordsRepository) Save(ctx context.Context, userID uuid.UUID, message *string, threshold int) error {
	stored := message
	if message != nil && r.sealer != nil {
		sealed, err := r.sealer.Seal(*message)
		if err != nil {
			return fmt.Errorf("seal last words: %w", err)
		}
		stored = &sealed
	}

	row := model.LastWords{UserID: userID, Message: stored, DeliveryThreshold: threshold}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"message", "delivery_threshold", "updated_at"}),
	}).Create(&row).Error
}

// ClearMessage removes the message but keeps the threshold
func (r *LastWordsRepository) ClearMessage(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.LastWords{}).
		Where("user_id = ?", userID).
		Update("message", nil).Error
}
