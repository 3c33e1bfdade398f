package jwthelper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	key := []byte("secret")

	token, err := GenerateToken(key, 7, "curl/8.0", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(key, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "curl/8.0", claims.UserAgent)
}

func TestParse_WrongKey(t *testing.T) {
	token, err := GenerateToken([]byte("secret"), 7, "", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken([]byte("other"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	token, err := GenerateToken([]byte("secret"), 7, "", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken([]byte("secret"), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	_, err := ParseToken([]byte("secret"), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
