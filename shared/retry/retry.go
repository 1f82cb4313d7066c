package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrMaxRetries wraps the last error once every attempt has failed.
var ErrMaxRetries = errors.New("max retries exceeded")

type Options struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// ShouldRetry decides whether err is worth another attempt. nil retries everything.
	ShouldRetry func(err error) bool
	Logger      *slog.Logger
}

// Do runs operation until it succeeds, returns a non-retryable error, ctx is
// done or the attempts run out. The final error still matches the last
// operation error under errors.Is.
func Do(ctx context.Context, opts Options, operation func(ctx context.Context) error) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 20 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 250 * time.Millisecond
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	delay := opts.InitialDelay

	for attempt := 1; ; attempt++ {
		err := operation(ctx)
		if err == nil {
			return nil
		}
		if opts.ShouldRetry != nil && !opts.ShouldRetry(err) {
			return err
		}
		if attempt >= opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		opts.Logger.WarnContext(ctx, "operation failed, retrying",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * opts.Multiplier)
			if delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}
	}
}
