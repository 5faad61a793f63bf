package middleware

import (
	"net/http"

	"github.com/nimbusweather/nimbus/internal/api/models"
)

// securityHeaders are set on every response. The API never serves HTML, so
// the content security policy denies everything.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), camera=(), microphone=()"},
	{"Cross-Origin-Resource-Policy", "same-origin"},
}

// SecurityHeaders adds standard security headers to all HTTP responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTLS rejects plain HTTP requests with 403 when enabled. Behind a
// load balancer the original scheme comes from X-Forwarded-Proto; requests
// without the header are let through so that in-cluster probes still work.
func RequireTLS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" && proto != "https" {
					models.NewProblem(models.ProblemTypeTLSRequired, "TLS required", http.StatusForbidden, GetRequestID(r.Context())).
						WithDetail("This endpoint requires HTTPS").
						WithInstance(r.URL.Path).
						Write(w)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
