package weather

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Join runs the calls of one source request concurrently and waits for all
// of them. The first primary failure cancels the remaining calls.
//
// A feature that is not requested, or whose call fails, leaves its
// destination at the zero value. That zero value is the empty placeholder
// the converter sees, so every converter always receives the same fixed set
// of inputs.
type Join struct {
	group  *errgroup.Group
	ctx    context.Context
	logger zerolog.Logger
}

// NewJoin creates a join for one source request.
func NewJoin(ctx context.Context, logger zerolog.Logger) *Join {
	g, gctx := errgroup.WithContext(ctx)
	return &Join{group: g, ctx: gctx, logger: logger}
}

// Primary schedules a mandatory call. Its error fails the join.
func Primary[T any](j *Join, dst *T, call func(ctx context.Context) (T, error)) {
	j.group.Go(func() error {
		v, err := call(j.ctx)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
}

// Secondary schedules an optional call for feature when requested. A
// failure is logged and leaves dst untouched.
func Secondary[T any](j *Join, feature Feature, requested bool, dst *T, call func(ctx context.Context) (T, error)) {
	if !requested {
		return
	}
	j.group.Go(func() error {
		v, err := call(j.ctx)
		if err != nil {
			if j.ctx.Err() == nil {
				j.logger.Warn().
					Err(err).
					Str("feature", string(feature)).
					Msg("optional feature request failed")
			}
			return nil
		}
		*dst = v
		return nil
	})
}

// Wait blocks until every scheduled call has returned and reports the first
// primary failure.
func (j *Join) Wait() error {
	return j.group.Wait()
}
