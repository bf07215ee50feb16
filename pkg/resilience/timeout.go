package resilience

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout runs fn under a deadline derived from ctx. A non-positive
// timeout runs fn with ctx unchanged. When the deadline fires first the
// returned error wraps context.DeadlineExceeded; fn keeps running in the
// background until it observes the cancelled context.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(deadlineCtx) }()

	select {
	case err := <-done:
		return err
	case <-deadlineCtx.Done():
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s cancelled: %w", name, err)
		}
		return fmt.Errorf("%s exceeded %v: %w", name, timeout, context.DeadlineExceeded)
	}
}
