package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the account the sweep watches over. Identity comes from the
// external auth provider; name and email follow the latest token claims.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"size:100;default:''"`
	Email     string    `json:"email" gorm:"size:320;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the name used in outgoing messages
func (u *User) DisplayName(fallback string) string {
	if u.Name != "" {
		return u.Name
	}
	return fallback
}

// UserResponse is the safe version of User for API responses
type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
