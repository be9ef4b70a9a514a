package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidURL is returned by [Open] for a malformed store URL.
	ErrInvalidURL = errors.New("invalid store URL")
	// ErrUnsupportedScheme is returned by [Open] for an unknown backend.
	ErrUnsupportedScheme = errors.New("unsupported store scheme")
	// ErrUnavailable is returned when a networked backend does not answer
	// its connection ping.
	ErrUnavailable = errors.New("store unavailable")
)

// Connection pings are attempted pingAttempts times, doubling the delay
// after each failure.
const pingAttempts = 3

// pingDelay is the first backoff delay; tests shorten it.
var pingDelay = time.Second

// pingWithBackoff calls ping until it succeeds, the attempts run out or ctx
// is done. The final failure is reported as [ErrUnavailable] for target.
func pingWithBackoff(ctx context.Context, target string, ping func(context.Context) error) error {
	delay := pingDelay
	var err error
	for attempt := 1; ; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt == pingAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, target, err)
}
