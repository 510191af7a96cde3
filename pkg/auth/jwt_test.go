package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateToken(id, "ana@example.com", "Ana")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "Ana", claims.Name)
	assert.Equal(t, "stillalive", claims.Issuer)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("a", time.Hour).GenerateToken(uuid.New(), "x@example.com", "")
	require.NoError(t, err)

	_, err = NewJWTManager("b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidate_Expired(t *testing.T) {
	m := NewJWTManager("s", -time.Minute)
	token, err := m.GenerateToken(uuid.New(), "x@example.com", "")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_MissingEmail(t *testing.T) {
	m := NewJWTManager("s", time.Hour)
	token, err := m.GenerateToken(uuid.New(), "", "")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
