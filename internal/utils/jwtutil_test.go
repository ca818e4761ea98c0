package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestTokenManager_RoundTrip(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	token, exp, err := m.GenerateToken(7, "admin@vgroup.la", "ADMIN")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserId)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "admin@vgroup.la", claims.Email)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	issuer, err := NewTokenManager("another-secret-abcdefgh", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.GenerateToken(1, "a@b.c", "STAFF")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenManager_Expired(t *testing.T) {
	m, err := NewTokenManager(testSecret, time.Minute)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := m.GenerateToken(1, "a@b.c", "STAFF")
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.Error(t, err)
}

func TestNewTokenManager_ShortSecret(t *testing.T) {
	_, err := NewTokenManager("short", time.Hour)
	assert.Error(t, err)
}
