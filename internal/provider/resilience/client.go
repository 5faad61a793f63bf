package resilience

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned when the circuit breaker rejects a request.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Observer is notified after every logical request (retries included).
type Observer interface {
	ObserveRequest(ctx context.Context, name string, duration time.Duration, err error)
}

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the upstream for circuit breaker naming, health and
	// metrics.
	Name string

	// Timeout is the per-attempt timeout. Default: 10s.
	Timeout time.Duration

	// MaxRetries for transient failures (5xx, network errors). Default: 3.
	MaxRetries uint64

	// Backoff bounds. Defaults: 100ms and 5s.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit rate.Limit

	// Burst is the limiter burst size. Default: 1.
	Burst int

	// CircuitBreaker configuration. If nil, uses DefaultCircuitBreakerConfig.
	CircuitBreaker *CircuitBreakerConfig

	// UserAgent is sent with every request when set.
	UserAgent string

	// Observers receive the outcome of each request.
	Observers []Observer
}

// DefaultClientConfig returns sensible defaults for the resilient client.
func DefaultClientConfig(name string) ClientConfig {
	cbConfig := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		CircuitBreaker:  &cbConfig,
	}
}

// Client is an HTTP client with rate limiting, a circuit breaker and retries.
type Client struct {
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker[*http.Response]
	limiter        *rate.Limiter
	config         ClientConfig
}

// NewClient creates a new resilient HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.Burst == 0 {
		cfg.Burst = 1
	}

	cbConfig := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbConfig = *cfg.CircuitBreaker
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(cfg.RateLimit, cfg.Burst)
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: NewCircuitBreaker[*http.Response](cbConfig), //nolint:bodyclose // type param, not response
		limiter:        limiter,
		config:         cfg,
	}
}

// Name returns the upstream name of the client.
func (c *Client) Name() string {
	return c.config.Name
}

// Do executes an HTTP request with circuit breaker protection and retries.
// 5xx responses and network errors are retried with exponential backoff; the
// last 5xx response is returned once retries are exhausted. Returns
// ErrCircuitOpen without calling upstream while the breaker is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()

	resp, err := c.do(ctx, req)

	var observed error
	switch {
	case err != nil:
		observed = err
	case resp.StatusCode >= 400:
		observed = &StatusError{StatusCode: resp.StatusCode}
	}
	for _, o := range c.config.Observers {
		o.ObserveRequest(ctx, c.config.Name, time.Since(start), observed)
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response
	operation := func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(fmt.Errorf("waiting for rate limiter: %w", err))
			}
		}

		resp, err := c.circuitBreaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			attempt := req.Clone(ctx)
			if c.config.UserAgent != "" {
				attempt.Header.Set("User-Agent", c.config.UserAgent)
			}
			r, err := c.httpClient.Do(attempt)
			if err != nil {
				return nil, err
			}
			// 5xx counts as a failure for the breaker.
			if r.StatusCode >= 500 {
				return r, &StatusError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				if lastResp != nil {
					lastResp.Body.Close()
				}
				lastResp = resp
			}
			return err
		}

		if lastResp != nil {
			lastResp.Body.Close()
		}
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if lastResp != nil && ctx.Err() == nil && !errors.Is(err, ErrCircuitOpen) {
			return lastResp, nil
		}
		if lastResp != nil {
			lastResp.Body.Close()
		}
		return nil, err
	}
	return lastResp, nil
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.circuitBreaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.circuitBreaker.Counts()
}
