package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Admin tokens are short-lived HS256 JWTs. They guard the write side of the
// API (location management, manual refresh, feature flags); the weather
// queries themselves are public. There are no refresh tokens: an operator
// mints a new token when the old one expires.

const (
	// AccessTokenExpiry is how long access tokens are valid.
	AccessTokenExpiry = 1 * time.Hour

	// DefaultIssuer and DefaultAudience are used when JWTConfig leaves them empty.
	DefaultIssuer   = "nimbus"
	DefaultAudience = "nimbus-admin"
)

// Role values carried in the "role" claim.
const (
	RoleAdmin = "admin"
)

// Predefined JWT errors.
var (
	ErrInvalidAccessToken = errors.New("invalid access token")
	ErrAccessTokenExpired = errors.New("access token has expired")
	ErrForbidden          = errors.New("insufficient role")
)

// JWTClaims represents the claims in admin access tokens.
type JWTClaims struct {
	jwt.RegisteredClaims

	Role string `json:"role"`
}

// JWTService handles JWT creation and validation.
type JWTService struct {
	signingKey []byte
	verifyKeys jwt.VerificationKeySet
	issuer     string
	audience   string
	expiry     time.Duration
}

// JWTConfig holds configuration for the JWT service.
type JWTConfig struct {
	// SigningKey is the secret key used to sign JWTs.
	SigningKey string

	// PreviousSigningKey still verifies tokens during a key rotation but
	// never signs new ones.
	PreviousSigningKey string

	Issuer   string
	Audience string

	// Expiry overrides AccessTokenExpiry.
	Expiry time.Duration
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg JWTConfig) *JWTService {
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}
	if cfg.Audience == "" {
		cfg.Audience = DefaultAudience
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = AccessTokenExpiry
	}

	keys := jwt.VerificationKeySet{Keys: []jwt.VerificationKey{[]byte(cfg.SigningKey)}}
	if cfg.PreviousSigningKey != "" && cfg.PreviousSigningKey != cfg.SigningKey {
		keys.Keys = append(keys.Keys, []byte(cfg.PreviousSigningKey))
	}

	return &JWTService{
		signingKey: []byte(cfg.SigningKey),
		verifyKeys: keys,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		expiry:     cfg.Expiry,
	}
}

// GenerateAccessToken creates a new access token for subject with the given role.
func (s *JWTService) GenerateAccessToken(subject, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateTokenID(),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateAccessToken validates an access token against the current and
// previous signing keys and returns the claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(*jwt.Token) (interface{}, error) {
		return s.verifyKeys, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrAccessTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccessToken, err.Error())
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidAccessToken
	}

	return claims, nil
}

// generateTokenID generates a unique token ID.
func generateTokenID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
