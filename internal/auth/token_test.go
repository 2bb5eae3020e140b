package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/nsghealth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	secret := []byte("session-secret")
	issued := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	token, err := GenerateToken("user-1", secret, issued, issued.Add(2*time.Hour))
	require.NoError(t, err)

	id, err := GetUserIDFromToken(token, secret, issued.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestToken_Failures(t *testing.T) {
	secret := []byte("session-secret")
	issued := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	token, err := GenerateToken("user-1", secret, issued, issued.Add(2*time.Hour))
	require.NoError(t, err)

	_, err = GetUserIDFromToken(token, secret, issued.Add(3*time.Hour))
	assert.ErrorIs(t, err, common.ErrTokenExpired)

	_, err = GetUserIDFromToken(token, []byte("other-secret"), issued.Add(time.Minute))
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = GetUserIDFromToken("garbage", secret, issued)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
