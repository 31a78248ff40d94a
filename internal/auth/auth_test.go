package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dangmn/chatline/internal/domain"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword("s3cret", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestHashPasswordRejectsBadInput(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, domain.ErrPasswordEmpty)

	long := make([]byte, domain.MaxPasswordLen+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = HashPassword(string(long))
	assert.ErrorIs(t, err, domain.ErrPasswordTooLong)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)
	user := &domain.User{ID: "u1", Username: "alice"}

	token, err := svc.Issue(user)
	require.NoError(t, err)

	uid, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u1"), uid)
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)
	other := NewTokenService("other-secret", time.Minute)
	user := &domain.User{ID: "u1", Username: "alice"}

	forged, err := other.Issue(user)
	require.NoError(t, err)

	_, err = svc.Verify(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("")
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)
	user := &domain.User{ID: "u1", Username: "alice"}

	token, err := svc.Issue(user)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)
	user := &domain.User{ID: "u1", Username: "alice"}

	token, err := svc.Issue(user)
	require.NoError(t, err)
	svc.Revoke(token)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
