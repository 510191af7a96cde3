package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/stillalive/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrContactLimit is returned when the user already has the maximum number
// of contacts
var ErrContactLimit = errors.New("contact limit reached")

// ContactRepository handles database operations for EmergencyContact
type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// List returns the user's contacts in creation order
func (r *ContactRepository) List(ctx context.Context, userID uuid.UUID, confirmedOnly bool) ([]model.EmergencyContact, error) {
	var contacts []model.EmergencyContact
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if confirmedOnly {
		q = q.Where("is_confirmed = ?", true)
	}
	err := q.Order("created_at ASC").Find(&contacts).Error
	return contacts, err
}

// FindByID finds one of the user's contacts, or nil
func (r *ContactRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.EmergencyContact, error) {
	var c model.EmergencyContact
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&c).Error
	return notFoundAsNil(&c, err)
}

// FindByToken finds the contact holding a confirmation token, or nil
func (r *ContactRepository) FindByToken(ctx context.Context, token string) (*model.EmergencyContact, error) {
	var c model.EmergencyContact
	err := r.db.WithContext(ctx).Where("confirmation_token = ?", token).First(&c).Error
	return notFoundAsNil(&c, err)
}

// Count returns how many contacts the user has
func (r *ContactRepository) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.EmergencyContact{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// ExistsWith reports whether another contact of the user already uses
// value in column (email or phone)
func (r *ContactRepository) ExistsWith(ctx context.Context, userID uuid.UUID, column, value string, exclude uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.EmergencyContact{}).
		Where("user_id = ?", userID).
		Where(clauseEq(column), value)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func clauseEq(column string) string {
	if column == "phone" {
		return "phone = ?"
	}
	return "email = ?"
}

// Create inserts a contact unless the user already has limit of them. The
// owning user row is locked for the count so concurrent creates serialize.
func (r *ContactRepository) Create(ctx context.Context, c *model.EmergencyContact, limit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", c.UserID).
			First(&owner).Error; err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&model.EmergencyContact{}).Where("user_id = ?", c.UserID).Count(&n).Error; err != nil {
			return err
		}
		if n >= int64(limit) {
			return ErrContactLimit
		}
		return tx.Create(c).Error
	})
}

// Update saves every column of the contact
func (r *ContactRepository) Update(ctx context.Context, c *model.EmergencyContact) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// Delete removes one of the user's contacts and reports whether it existed
func (r *ContactRepository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.EmergencyContact{})
	return res.RowsAffected > 0, res.Error
}

// Confirm marks a contact confirmed. The token is kept so a second visit
// to the link reports the contact as already confirmed.
func (r *ContactRepository) Confirm(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.EmergencyContact{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_confirmed":         true,
			"confirmation_expires": nil,
			"updated_at":           time.Now(),
		}).Error
}
