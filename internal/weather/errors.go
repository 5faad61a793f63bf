package weather

import (
	"errors"

	"github.com/nimbusweather/nimbus/internal/provider/resilience"
)

// Weather errors. Sources wrap one of them so callers can tell a
// configuration problem from bad data or an upstream failure.
var (
	// ErrMissingAPIKey is returned before any network call when a source
	// that needs a key has none.
	ErrMissingAPIKey = errors.New("missing api key")

	// ErrInvalidData means mandatory sections were absent or empty. The
	// update is discarded and stored weather kept.
	ErrInvalidData = errors.New("invalid or incomplete weather data")

	// ErrInvalidLocation means source-specific location parameters could not
	// be resolved.
	ErrInvalidLocation = errors.New("invalid location")

	ErrUnauthorized  = resilience.ErrUnauthorized
	ErrRateLimited   = resilience.ErrRateLimited
	ErrRequestFailed = resilience.ErrRequestFailed

	ErrSourceNotFound      = errors.New("source not found")
	ErrFeatureNotSupported = errors.New("feature not supported by source")
	ErrLocationNotFound    = errors.New("location not found")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)
