package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/motorshop/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "motorshop-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	input := GenerateTokenInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Username: "frontdesk",
		Roles:    []string{"staff"},
	}

	token, expiresAt, err := svc.GenerateAccessToken(input)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, input.TenantID.String(), claims.TenantID)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, "frontdesk", claims.Username)
	assert.False(t, claims.IsAdmin())
	assert.Greater(t, claims.GetRemainingTTL(), 14*time.Minute)

	tc := claims.TenantContext()
	assert.Equal(t, input.TenantID, tc.TenantID)
	assert.Equal(t, input.UserID, tc.UserID)
	assert.False(t, tc.IsSuperAdmin)
}

func TestValidateAccessToken_AdminWithoutTenant(t *testing.T) {
	svc := newTestJWTService()

	token, _, err := svc.GenerateAccessToken(GenerateTokenInput{UserID: uuid.New(), Roles: []string{RoleAdmin}})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
	assert.True(t, claims.TenantContext().IsSuperAdmin)
}

func TestValidateAccessToken_MissingTenant(t *testing.T) {
	svc := newTestJWTService()

	token, _, err := svc.GenerateAccessToken(GenerateTokenInput{UserID: uuid.New(), Roles: []string{"staff"}})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrMissingTenantID)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: -time.Hour,
	})

	token, _, err := svc.GenerateAccessToken(GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_Invalid(t *testing.T) {
	svc := newTestJWTService()

	_, err := svc.ValidateAccessToken("invalid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_DifferentSecret(t *testing.T) {
	other := NewJWTService(config.JWTConfig{
		Secret:                "another-secret-key-at-least-32ch",
		AccessTokenExpiration: time.Minute,
		Issuer:                "motorshop-test",
	})
	token, _, err := other.GenerateAccessToken(GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_WrongIssuer(t *testing.T) {
	other := NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Minute,
		Issuer:                "someone-else",
	})
	token, _, err := other.GenerateAccessToken(GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "motorshop-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		TenantID: uuid.NewString(),
		UserID:   uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_HasRole(t *testing.T) {
	c := &Claims{Roles: []string{"staff", RoleSuperAdmin}}
	assert.True(t, c.HasRole("staff"))
	assert.False(t, c.HasRole("cashier"))
	assert.True(t, c.IsAdmin())
	assert.Equal(t, time.Duration(0), c.GetRemainingTTL())
}
