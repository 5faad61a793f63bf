package resilience

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Upstream failure classes. Every error returned by GetJSON and CheckStatus
// wraps exactly one of them.
var (
	ErrUnauthorized  = errors.New("upstream rejected credentials")
	ErrRateLimited   = errors.New("upstream rate limit exceeded")
	ErrRequestFailed = errors.New("upstream request failed")
)

// StatusError is a non-2xx upstream response.
type StatusError struct {
	StatusCode int

	// RetryAfter is parsed from the Retry-After header of 429 responses.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap maps the status code to its failure class.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrRequestFailed
	}
}

// CheckStatus returns nil for 2xx responses and a *StatusError otherwise.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	se := &StatusError{StatusCode: resp.StatusCode}
	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			se.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return se
}

// GetJSON executes req and decodes a 2xx JSON body into target. Transport
// failures and an open circuit wrap ErrRequestFailed.
func (c *Client) GetJSON(req *http.Request, target any) error {
	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRequestFailed, c.config.Name, err)
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return fmt.Errorf("%s: %w", c.config.Name, err)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: %s: decoding response: %w", ErrRequestFailed, c.config.Name, err)
	}
	return nil
}

// FetchJSON issues a GET to endpoint with the given query parameters and
// decodes the JSON response into target.
func (c *Client) FetchJSON(ctx context.Context, endpoint string, query url.Values, target any) error {
	return c.FetchJSONWithHeader(ctx, endpoint, query, nil, target)
}

// FetchJSONWithHeader is FetchJSON with extra request headers, for vendors
// that authenticate by header.
func (c *Client) FetchJSONWithHeader(ctx context.Context, endpoint string, query url.Values, header http.Header, target any) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: %s: creating request: %w", ErrRequestFailed, c.config.Name, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	return c.GetJSON(req, target)
}
