package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskflow-gateway/pkg/errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, 24*time.Hour)

	access, refresh, err := svc.GenerateTokens("sess-1", "user-1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "user-1", claims.UserID)
	assert.False(t, claims.IsRefreshToken)

	claims, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, claims.IsRefreshToken)
}

func TestJWTService_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewJWTService("secret", time.Hour, time.Hour)
	other := NewJWTService("other", time.Hour, time.Hour)

	access, _, err := other.GenerateTokens("sess-1", "user-1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	past := svc.(*jwtService)
	past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	access, _, err = past.GenerateTokens("sess-1", "user-1")
	require.NoError(t, err)
	past.now = time.Now
	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}
