package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when upstream answers 404.
	ErrNotFound = errors.New("upstream record not found")

	// ErrUpstreamUnavailable is returned while the circuit breaker is open.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// StatusError is a non-2xx, non-404 upstream response.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s: status=%d body=%s", e.Path, e.StatusCode, e.Body)
}

// Temporary reports whether the status is a server-side failure.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// canceledError is a request abandoned because the caller's context ended.
type canceledError struct {
	path string
	err  error
}

func (e *canceledError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.path, e.err)
}

func (e *canceledError) Unwrap() error { return e.err }

// requestError attributes err to the caller when ctx has ended, so the
// client's own timeout is the only deadline that counts against upstream.
func requestError(ctx context.Context, path string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &canceledError{path: path, err: ctxErr}
	}
	return fmt.Errorf("upstream %s: %w", path, err)
}

// countsAsSuccess tells the breaker which errors say nothing about
// upstream health: missing records, client errors and caller cancellation.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, ErrNotFound) {
		return true
	}
	var canceled *canceledError
	if errors.As(err, &canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return !statusErr.Temporary()
	}
	return false
}
