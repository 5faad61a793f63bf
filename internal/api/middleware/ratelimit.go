package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/nimbusweather/nimbus/internal/api/models"
)

// RateLimit allows Requests per Window.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// RateLimits groups the limits of each endpoint class.
type RateLimits struct {
	// Auth applies to token issuance.
	Auth RateLimit

	// Weather applies to weather reads, which may call upstream sources.
	// It is counted per client and location.
	Weather RateLimit

	// Standard applies to everything else, per client or admin subject.
	Standard RateLimit
}

// DefaultRateLimits returns 10, 30 and 100 requests per minute for auth,
// weather and standard endpoints.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Auth:     RateLimit{Requests: 10, Window: time.Minute},
		Weather:  RateLimit{Requests: 30, Window: time.Minute},
		Standard: RateLimit{Requests: 100, Window: time.Minute},
	}
}

// WithDefaults fills unset limits from DefaultRateLimits.
func (l RateLimits) WithDefaults() RateLimits {
	def := DefaultRateLimits()
	fill := func(v *RateLimit, d RateLimit) {
		if v.Requests <= 0 {
			v.Requests = d.Requests
		}
		if v.Window <= 0 {
			v.Window = d.Window
		}
	}
	fill(&l.Auth, def.Auth)
	fill(&l.Weather, def.Weather)
	fill(&l.Standard, def.Standard)
	return l
}

// RateLimitByIP limits requests per client IP. Behind a proxy the IP comes
// from chi's RealIP middleware.
func RateLimitByIP(limit RateLimit) func(http.Handler) http.Handler {
	return newLimiter(limit, httprate.KeyByRealIP)
}

// RateLimitByLocation limits requests per client IP and location, so a
// client polling one location does not exhaust its budget for others. It
// must run after routing, for example through chi's With.
func RateLimitByLocation(limit RateLimit) func(http.Handler) http.Handler {
	return newLimiter(limit, httprate.KeyByRealIP, keyByLocation)
}

// RateLimitBySubject limits requests per authenticated subject, falling back
// to the client IP.
func RateLimitBySubject(limit RateLimit) func(http.Handler) http.Handler {
	return newLimiter(limit, keyBySubjectOrIP)
}

func newLimiter(limit RateLimit, keys ...httprate.KeyFunc) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit.Requests,
		limit.Window,
		httprate.WithKeyFuncs(keys...),
		httprate.WithLimitHandler(limitExceeded(limit.Window)),
	)
}

func keyByLocation(r *http.Request) (string, error) {
	return "location:" + chi.URLParam(r, "locationId"), nil
}

func keyBySubjectOrIP(r *http.Request) (string, error) {
	if subject := GetSubject(r.Context()); subject != "" {
		return "subject:" + subject, nil
	}
	return httprate.KeyByRealIP(r)
}

// limitExceeded writes a 429 problem. httprate sets Retry-After from the
// window counter; the full window is the fallback.
func limitExceeded(window time.Duration) http.HandlerFunc {
	fallback := strconv.Itoa(int(window.Round(time.Second) / time.Second))
	return func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Retry-After") == "" {
			w.Header().Set("Retry-After", fallback)
		}
		models.NewTooManyRequests(GetRequestID(r.Context()), "Rate limit exceeded. Please try again later.").
			WithInstance(r.URL.Path).
			Write(w)
	}
}
