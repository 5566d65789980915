package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	id := uuid.New()
	tok, err := GenerateJWT("secret", id, "a@b.com", time.Hour)
	require.NoError(t, err)

	gotID, email, err := ParseJWT("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "a@b.com", email)
}

func TestParseJWTRejects(t *testing.T) {
	id := uuid.New()

	expired, err := GenerateJWT("secret", id, "a@b.com", -time.Minute)
	require.NoError(t, err)
	_, _, err = ParseJWT("secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tok, err := GenerateJWT("secret", id, "a@b.com", time.Hour)
	require.NoError(t, err)
	_, _, err = ParseJWT("other", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, _, err = ParseJWT("secret", noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateJWTNeedsSecret(t *testing.T) {
	_, err := GenerateJWT("", uuid.New(), "a@b.com", time.Hour)
	assert.Error(t, err)
}
