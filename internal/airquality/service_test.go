package airquality_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusweather/nimbus/internal/airquality"
)

type mockNetwork struct {
	snapshot   *airquality.AQSnapshot
	err        error
	fetchCount atomic.Int32
}

func (m *mockNetwork) FetchSnapshot(_ context.Context) (*airquality.AQSnapshot, error) {
	m.fetchCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

func TestService_AirQualityAt(t *testing.T) {
	network := &mockNetwork{snapshot: amsterdamSnapshot()}
	svc := airquality.NewService(airquality.ServiceConfig{
		Network: network,
		Logger:  zerolog.Nop(),
	})

	ctx := context.Background()
	est, err := svc.AirQualityAt(ctx, 52.370, 4.89)
	require.NoError(t, err)
	assert.True(t, est.AirQuality.IsValid())

	_, err = svc.AirQualityAt(ctx, 52.375, 4.85)
	require.NoError(t, err)
	assert.Equal(t, int32(1), network.fetchCount.Load(), "snapshot should be cached")
}

func TestService_AirQualityAt_OutOfRange(t *testing.T) {
	svc := airquality.NewService(airquality.ServiceConfig{
		Network: &mockNetwork{snapshot: amsterdamSnapshot()},
		Logger:  zerolog.Nop(),
	})

	_, err := svc.AirQualityAt(context.Background(), -33.86, 151.2)
	assert.ErrorIs(t, err, airquality.ErrNoStationsInRange)
}

func TestService_Snapshot_CacheExpiry(t *testing.T) {
	network := &mockNetwork{snapshot: amsterdamSnapshot()}
	svc := airquality.NewService(airquality.ServiceConfig{
		Network:  network,
		Logger:   zerolog.Nop(),
		CacheTTL: 50 * time.Millisecond,
	})

	ctx := context.Background()
	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), network.fetchCount.Load())
}

func TestService_Snapshot_StaleIfError(t *testing.T) {
	network := &mockNetwork{snapshot: amsterdamSnapshot()}
	svc := airquality.NewService(airquality.ServiceConfig{
		Network:         network,
		Logger:          zerolog.Nop(),
		CacheTTL:        50 * time.Millisecond,
		StaleIfErrorTTL: time.Hour,
	})

	ctx := context.Background()
	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	network.err = errors.New("network down")

	snapshot, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshot.Stations, 4)
}

func TestService_Snapshot_ErrorWithoutCache(t *testing.T) {
	svc := airquality.NewService(airquality.ServiceConfig{
		Network: &mockNetwork{err: errors.New("network down")},
		Logger:  zerolog.Nop(),
	})

	_, err := svc.Snapshot(context.Background())
	assert.ErrorIs(t, err, airquality.ErrProviderUnavailable)
}

func TestService_Invalidate(t *testing.T) {
	network := &mockNetwork{snapshot: amsterdamSnapshot()}
	svc := airquality.NewService(airquality.ServiceConfig{
		Network:  network,
		Logger:   zerolog.Nop(),
		CacheTTL: 10 * time.Minute,
	})

	ctx := context.Background()
	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	svc.Invalidate()

	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), network.fetchCount.Load())
}
