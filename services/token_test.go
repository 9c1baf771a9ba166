package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-app/models"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := NewTokenService("secret", "refresh-secret", time.Minute, time.Hour)
	user := &models.User{ID: "u-1", Role: models.RoleDoctor}

	pair, err := ts.CreateTokenPair(user)
	require.NoError(t, err)

	claims, err := ts.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleDoctor, claims.Role)

	refreshClaims, err := ts.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", refreshClaims.UserID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	ts := NewTokenService("secret", "refresh-secret", time.Minute, time.Hour)
	pair, err := ts.CreateTokenPair(&models.User{ID: "u-1", Role: models.RolePatient})
	require.NoError(t, err)

	_, err = ts.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ts.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	ts := NewTokenService("secret", "refresh-secret", -time.Minute, time.Hour)
	pair, err := ts.CreateTokenPair(&models.User{ID: "u-1"})
	require.NoError(t, err)

	_, err = ts.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	ts := NewTokenService("secret", "refresh-secret", time.Minute, time.Hour)
	other := NewTokenService("other-secret", "refresh-secret", time.Minute, time.Hour)

	pair, err := other.CreateTokenPair(&models.User{ID: "u-1"})
	require.NoError(t, err)

	_, err = ts.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
