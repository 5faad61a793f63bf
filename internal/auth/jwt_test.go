package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/auth"
)

const testKey = "test-secret-key-for-testing-only"

func TestJWTService_GenerateAndValidateAccessToken(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{
		SigningKey: testKey,
		Issuer:     "https://nimbus.example",
		Audience:   "nimbus-admin",
	})

	token, expiresAt, err := svc.GenerateAccessToken("ops@example.com", auth.RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
	assert.Equal(t, "https://nimbus.example", claims.Issuer)
}

func TestJWTService_Defaults(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{SigningKey: testKey})

	token, expiresAt, err := svc.GenerateAccessToken("ops", auth.RoleAdmin)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(auth.AccessTokenExpiry), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, auth.DefaultIssuer, claims.Issuer)
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := auth.NewJWTService(auth.JWTConfig{SigningKey: testKey})

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
		})
	}
}

func TestJWTService_Rejects(t *testing.T) {
	base := auth.JWTConfig{SigningKey: testKey, Issuer: "issuer-one", Audience: "audience-one"}

	tests := []struct {
		name     string
		validate auth.JWTConfig
	}{
		{"wrong signing key", auth.JWTConfig{SigningKey: "another-key", Issuer: "issuer-one", Audience: "audience-one"}},
		{"wrong issuer", auth.JWTConfig{SigningKey: testKey, Issuer: "issuer-two", Audience: "audience-one"}},
		{"wrong audience", auth.JWTConfig{SigningKey: testKey, Issuer: "issuer-one", Audience: "audience-two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := auth.NewJWTService(base).GenerateAccessToken("ops", auth.RoleAdmin)
			require.NoError(t, err)

			_, err = auth.NewJWTService(tt.validate).ValidateAccessToken(token)
			assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
		})
	}
}

func TestJWTService_Expired(t *testing.T) {
	claims := auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    auth.DefaultIssuer,
			Subject:   "ops",
			Audience:  jwt.ClaimStrings{auth.DefaultAudience},
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		Role: auth.RoleAdmin,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testKey))
	require.NoError(t, err)

	_, err = auth.NewJWTService(auth.JWTConfig{SigningKey: testKey}).ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrAccessTokenExpired)
}

func TestJWTService_KeyRotation(t *testing.T) {
	const oldKey = "previous-secret-key-for-testing"
	oldToken, _, err := auth.NewJWTService(auth.JWTConfig{SigningKey: oldKey}).GenerateAccessToken("ops", auth.RoleAdmin)
	require.NoError(t, err)

	rotated := auth.NewJWTService(auth.JWTConfig{SigningKey: testKey, PreviousSigningKey: oldKey})
	claims, err := rotated.ValidateAccessToken(oldToken)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)

	newToken, _, err := rotated.GenerateAccessToken("ops", auth.RoleAdmin)
	require.NoError(t, err)
	_, err = auth.NewJWTService(auth.JWTConfig{SigningKey: oldKey}).ValidateAccessToken(newToken)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken, "new tokens are signed with the current key only")

	_, err = auth.NewJWTService(auth.JWTConfig{SigningKey: testKey}).ValidateAccessToken(oldToken)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken, "rotation over once the previous key is dropped")
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    auth.DefaultIssuer,
		Subject:   "ops",
		Audience:  jwt.ClaimStrings{auth.DefaultAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.NewJWTService(auth.JWTConfig{SigningKey: testKey}).ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}
