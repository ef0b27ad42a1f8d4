package tools

import (
	"context"
	"errors"
	"syscall"
	"time"
)

const (
	maxStartAttempts = 3
	startBackoff     = 20 * time.Millisecond
)

// execRetry runs exec and retries it when the process could not start
// because its executable was still open for writing. No other failure is
// retried: a tool that ran and failed is a result, not a transient.
func (r *Runner) execRetry(ctx context.Context, id ID, in, out string) (string, error) {
	for attempt := 1; ; attempt++ {
		stderr, err := r.exec(ctx, id, in, out)
		if err == nil || attempt >= maxStartAttempts || !retryableStart(err) {
			return stderr, err
		}
		select {
		case <-ctx.Done():
			return stderr, err
		case <-time.After(startBackoff * time.Duration(attempt)):
		}
	}
}

// retryableStart reports whether err is a start failure worth retrying.
func retryableStart(err error) bool {
	return errors.Is(err, syscall.ETXTBSY)
}
