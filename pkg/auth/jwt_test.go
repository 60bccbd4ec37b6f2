package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.GenerateToken(User{ID: "018f0000-0000-7000-8000-000000000001", Email: "a@b.c"})
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "018f0000-0000-7000-8000-000000000001", claims.User.ID)
	assert.Equal(t, "a@b.c", claims.User.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Rejects(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := NewTokenManager("other-secret", time.Hour).GenerateToken(User{ID: "u1"})
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)

	expired, err := NewTokenManager("test-secret", -time.Minute).GenerateToken(User{ID: "u1"})
	require.NoError(t, err)
	_, err = m.ValidateToken(expired)
	assert.Error(t, err)

	noUser, err := m.GenerateToken(User{})
	require.NoError(t, err)
	_, err = m.ValidateToken(noUser)
	assert.Error(t, err)

	_, err = m.ValidateToken("garbage")
	assert.Error(t, err)
}
