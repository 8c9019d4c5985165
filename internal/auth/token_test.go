package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundtrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, time.Hour)
	userID := uuid.New()

	token, err := m.NewAccessToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := m.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestAccessTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute, time.Hour)

	token, err := m.NewAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	issuer := NewTokenManager("test-secret", time.Hour, time.Hour)
	verifier := NewTokenManager("other-secret", time.Hour, time.Hour)

	token, err := issuer.NewAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = verifier.ParseAccessToken(token)
	assert.Error(t, err)
}

func TestAccessTokenTampered(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, time.Hour)

	token, err := m.NewAccessToken(uuid.New())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	_, err = m.ParseAccessToken(tampered)
	assert.Error(t, err)
}

func TestAccessTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, time.Hour)

	_, err := m.ParseAccessToken("not-a-token")
	assert.Error(t, err)
}

func TestResetTokenRoundtrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, time.Hour)

	token, err := m.NewResetToken("user@example.com", "hash-v1")
	require.NoError(t, err)

	subject, err := m.ResetTokenSubject(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", subject)

	email, err := m.VerifyResetToken(token, "hash-v1")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestResetTokenInvalidAfterPasswordChange(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, time.Hour)

	token, err := m.NewResetToken("user@example.com", "hash-v1")
	require.NoError(t, err)

	// A different stored hash means a different signing key.
	_, err = m.VerifyResetToken(token, "hash-v2")
	assert.Error(t, err)
}

func TestResetTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, -time.Minute)

	token, err := m.NewResetToken("user@example.com", "hash-v1")
	require.NoError(t, err)

	_, err = m.VerifyResetToken(token, "hash-v1")
	assert.Error(t, err)
}

func TestResetTokenIsNotAnAccessToken(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour, time.Hour)

	token, err := m.NewResetToken("user@example.com", "hash-v1")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	assert.Error(t, err)
}
