package featureflags

import (
	"context"
	"errors"
)

// ErrFlagNotFound is returned when deleting a flag that is not stored.
var ErrFlagNotFound = errors.New("feature flag not found")

// Repository stores flags. The service reads the whole set at once and
// caches it, so there is no single-key lookup.
type Repository interface {
	// List returns every stored flag.
	List(ctx context.Context) ([]*Flag, error)

	// Upsert creates or replaces flags atomically, stamping UpdatedAt.
	Upsert(ctx context.Context, flags []*Flag) error

	// Delete removes a flag, returning ErrFlagNotFound when absent.
	Delete(ctx context.Context, key string) error
}
