package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBusy = errors.New("busy")

func quiet() Options {
	return Options{
		MaxAttempts:  4,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	err := Do(context.Background(), quiet(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errBusy
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), quiet(), func(context.Context) error {
		calls++
		return errBusy
	})

	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, errBusy)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	fatal := errors.New("fatal")
	opts := quiet()
	opts.ShouldRetry = func(err error) bool { return errors.Is(err, errBusy) }

	calls := 0
	err := Do(context.Background(), opts, func(context.Context) error {
		calls++
		return fatal
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, fatal, err)
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := quiet()
	opts.InitialDelay = time.Second
	opts.MaxDelay = time.Second

	err := Do(ctx, opts, func(context.Context) error {
		cancel()
		return errBusy
	})

	assert.ErrorIs(t, err, context.Canceled)
}
