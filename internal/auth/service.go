package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrDevAuthDisabled is returned by DevAuthenticate outside development.
var ErrDevAuthDisabled = errors.New("development authentication is disabled")

// Service provides authentication operations.
type Service struct {
	jwtService *JWTService
	devAuth    bool
}

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	JWTService *JWTService

	// DevAuth enables DevAuthenticate. Only set it in development.
	DevAuth bool
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		jwtService: cfg.JWTService,
		devAuth:    cfg.DevAuth,
	}
}

// ValidateAccessToken validates a bearer token and returns its subject. Only
// admin tokens are accepted.
func (s *Service) ValidateAccessToken(tokenString string) (string, error) {
	claims, err := s.jwtService.ValidateAccessToken(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Role != RoleAdmin {
		return "", ErrForbidden
	}
	return claims.Subject, nil
}

// IssueAdminToken mints an admin token for subject.
func (s *Service) IssueAdminToken(subject string) (*TokenResponse, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidAccessToken)
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(subject, RoleAdmin)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
		Subject:     subject,
		Role:        RoleAdmin,
	}, nil
}

// DevAuthenticate issues an admin token without credentials. This is
// intended for local development only.
func (s *Service) DevAuthenticate(req *DevTokenRequest) (*TokenResponse, error) {
	if !s.devAuth {
		return nil, ErrDevAuthDisabled
	}

	subject := req.Subject
	if subject == "" {
		subject = "dev_" + uuid.New().String()[:8]
	}
	return s.IssueAdminToken(subject)
}
