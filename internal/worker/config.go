// Package worker provides background weather refreshes for Nimbus.
package worker

import (
	"time"
)

// RefreshConfig holds configuration for the refresh job.
type RefreshConfig struct {
	// Interval between scheduled refreshes of every stored location.
	// Default: 1 hour
	Interval time.Duration

	// Concurrency is the number of locations refreshed at once.
	// Default: 3
	Concurrency int

	// Timeout bounds the refresh of one location.
	// Default: 60 seconds
	Timeout time.Duration
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Interval:    time.Hour,
		Concurrency: 3,
		Timeout:     60 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultRefreshConfig.
func (c RefreshConfig) withDefaults() RefreshConfig {
	def := DefaultRefreshConfig()
	if c.Interval <= 0 {
		c.Interval = def.Interval
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}
