package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nimbusweather/nimbus/internal/api/models"
	"github.com/nimbusweather/nimbus/internal/auth"
)

const authRealm = "nimbus"

type subjectKey struct{}

// TokenValidator validates a bearer token and returns its subject.
type TokenValidator interface {
	ValidateAccessToken(token string) (string, error)
}

// Auth guards the admin routes with bearer tokens. Failures answer 401 with
// a WWW-Authenticate challenge, or 403 for a valid token lacking the admin
// role. The subject is stored in the context and on the request span.
func Auth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r.Header.Get("Authorization"))
			if problem != "" {
				challenge(w, r, "", problem)
				return
			}

			subject, err := validator.ValidateAccessToken(token)
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrForbidden):
				models.NewForbidden(GetRequestID(r.Context()), "admin role required").
					WithInstance(r.URL.Path).
					Write(w)
				return
			case errors.Is(err, auth.ErrAccessTokenExpired):
				challenge(w, r, "invalid_token", "access token has expired")
				return
			case errors.Is(err, auth.ErrInvalidAccessToken):
				challenge(w, r, "invalid_token", "invalid access token")
				return
			default:
				challenge(w, r, "", "authentication failed")
				return
			}

			trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("enduser.id", subject))
			ctx := context.WithValue(r.Context(), subjectKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization header. The scheme
// is case-insensitive. A non-empty problem describes why it failed.
func bearerToken(header string) (token, problem string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization header format"
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", "missing bearer token"
	}
	return token, ""
}

// challenge writes a 401 problem with an RFC 6750 challenge. code is the
// OAuth error code, empty when no token was presented.
func challenge(w http.ResponseWriter, r *http.Request, code, detail string) {
	value := `Bearer realm="` + authRealm + `"`
	if code != "" {
		value += `, error="` + code + `", error_description="` + detail + `"`
	}
	w.Header().Set("WWW-Authenticate", value)
	models.NewUnauthorized(GetRequestID(r.Context()), detail).
		WithInstance(r.URL.Path).
		Write(w)
}

// GetSubject retrieves the authenticated token subject from the context.
// Returns an empty string if not authenticated.
func GetSubject(ctx context.Context) string {
	if id, ok := ctx.Value(subjectKey{}).(string); ok {
		return id
	}
	return ""
}
