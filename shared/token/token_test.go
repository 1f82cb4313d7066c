package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestIssueThenVerify(t *testing.T) {
	m := NewManager(secret, 0)

	signed, err := m.Issue("usr-abc", "alice", "alice@example.com")
	require.NoError(t, err)

	claims, err := m.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "usr-abc", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(DefaultTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyExpired(t *testing.T) {
	m := NewManager(secret, time.Hour)
	issuedAt := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issuedAt }

	signed, err := m.Issue("usr-abc", "alice", "alice@example.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	signed, err := NewManager("another-secret-another-secret-xx", time.Hour).Issue("usr-abc", "alice", "a@b.c")
	require.NoError(t, err)

	_, err = NewManager(secret, time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyRejectsGarbageAndUnsignedTokens(t *testing.T) {
	m := NewManager(secret, time.Hour)

	_, err := m.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalid)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "usr-abc"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyRequiresUserID(t *testing.T) {
	m := NewManager(secret, time.Hour)
	signed, err := m.Issue("", "alice", "a@b.c")
	require.NoError(t, err)

	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalid)
}
