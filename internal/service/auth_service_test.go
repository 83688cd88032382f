package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-ops-api/internal/models"
	appErrors "github.com/noah-isme/academy-ops-api/pkg/errors"
)

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := NewAuthService(zap.NewNop(), AuthConfig{AccessTokenSecret: "secret", AccessTokenExpiry: time.Hour, Issuer: "academy"})

	token, expiresAt, err := svc.IssueToken("staff-1", models.RoleStaff, "Front Desk")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.UserID)
	assert.Equal(t, models.RoleStaff, claims.Role)
	assert.Equal(t, "Front Desk", claims.FullName)
}

func TestAuthServiceValidateTokenWrongSecret(t *testing.T) {
	issuer := NewAuthService(nil, AuthConfig{AccessTokenSecret: "one"})
	token, _, err := issuer.IssueToken("staff-1", models.RoleStaff, "")
	require.NoError(t, err)

	verifier := NewAuthService(nil, AuthConfig{AccessTokenSecret: "two"})
	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateTokenExpired(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret"})
	past := time.Now().Add(-2 * time.Hour)
	claims := &models.JWTClaims{
		UserID: "staff-1",
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(past),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	require.Error(t, err)
}

func TestAuthServiceValidateTokenRequiresActor(t *testing.T) {
	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret"})
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{Role: models.RoleStaff}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	require.Error(t, err)
}

func TestAuthServiceRejectsForeignIssuerAndAlgorithm(t *testing.T) {
	foreign := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "elsewhere"})
	token, _, err := foreign.IssueToken("staff-1", models.RoleStaff, "")
	require.NoError(t, err)

	svc := NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "academy"})
	_, err = svc.ValidateToken(token)
	require.Error(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &models.JWTClaims{UserID: "staff-1"}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = NewAuthService(nil, AuthConfig{AccessTokenSecret: "secret"}).ValidateToken(hs512)
	require.Error(t, err)
}
