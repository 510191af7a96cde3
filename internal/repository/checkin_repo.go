package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"gorm.io/gorm"
)

// CheckInRepository handles database operations for CheckIn
type CheckInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// Create appends a check-in
func (r *CheckInRepository) Create(ctx context.Context, c *model.CheckIn) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// Latest returns the most recent check-in, or nil if the user has none
func (r *CheckInRepository) Latest(ctx context.Context, userID uuid.UUID) (*model.CheckIn, error) {
	var c model.CheckIn
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_in_time DESC").
		First(&c).Error
	return notFoundAsNil(&c, err)
}

// ListRecent returns up to limit check-ins, newest first
func (r *CheckInRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]model.CheckIn, error) {
	var rows []model.CheckIn
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_in_time DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
