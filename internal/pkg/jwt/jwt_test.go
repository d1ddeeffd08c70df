package jwt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "company-1", RoleTimekeeper)
	require.NoError(t, err)
	assert.NotZero(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	companyID, ok := ClaimString(claims, "company_id")
	assert.True(t, ok)
	assert.Equal(t, "company-1", companyID)
	assert.Equal(t, "timekeeper", claims["role"])
	assert.Equal(t, "access", claims["type"])
}

func TestGenerateAccessToken_BadExpiration(t *testing.T) {
	svc := NewJWTService("test-secret", "soon")

	_, _, err := svc.GenerateAccessToken("user-1", "company-1", RoleOwner)
	assert.ErrorIs(t, err, ErrInvalidExpiration)
}

func TestClaimString(t *testing.T) {
	claims := map[string]interface{}{"a": "x", "b": "", "c": 3}

	_, ok := ClaimString(claims, "b")
	assert.False(t, ok)
	_, ok = ClaimString(claims, "c")
	assert.False(t, ok)
	_, ok = ClaimString(claims, "missing")
	assert.False(t, ok)
	v, ok := ClaimString(claims, "a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}
