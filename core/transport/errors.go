package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTimeout marks a peer that did not answer in time.
	ErrTimeout = errors.New("source timed out")
	// ErrNotFound marks a source the gateway cannot currently locate.
	ErrNotFound = errors.New("source not found")
)

// IsTimeout reports whether err is a timeout-classified failure.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// classify wraps raw client errors with ErrTimeout when they are timeouts.
func classify(op, addr string, err error) error {
	if IsTimeout(err) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%s %s: %w: %v", op, addr, ErrTimeout, err)
	}
	return fmt.Errorf("%s %s: %w", op, addr, err)
}
