package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-buddy/backend/internal/service"
	"github.com/pageza/recipe-buddy/backend/internal/types"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := service.NewTokenService("test-secret", time.Hour)

	token, err := svc.IssueAdminToken("ops@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, types.RoleAdmin, claims.Role)
}

func TestTokenServiceRejects(t *testing.T) {
	svc := service.NewTokenService("test-secret", time.Hour)

	other, err := service.NewTokenService("other-secret", time.Hour).IssueAdminToken("x")
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	userToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &types.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "user",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(userToken)
	assert.ErrorIs(t, err, service.ErrNotAdmin)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &types.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		Role:             types.RoleAdmin,
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestTokenServiceWithoutSecret(t *testing.T) {
	svc := service.NewTokenService("", 0)
	_, err := svc.IssueAdminToken("x")
	assert.Error(t, err)
	_, err = svc.ValidateToken("anything")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
