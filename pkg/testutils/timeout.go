package testutils

import (
	"context"
	"testing"
	"time"
)

var (
	StartTimeout = 5 * time.Second
	pollInterval = 10 * time.Millisecond
)

// WithTimeout polls f until it returns an empty string, failing the test with
// the last reported reason once StartTimeout elapses.
func WithTimeout(t *testing.T, f func() string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), StartTimeout)
	defer cancel()

	lastErr := f()
	for lastErr != "" {
		select {
		case <-ctx.Done():
			t.Fatalf("did not reach expected state after %v: %s", StartTimeout, lastErr)
			return
		case <-time.After(pollInterval):
			lastErr = f()
		}
	}
}
