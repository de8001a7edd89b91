package retry

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = time.Second
)

// replaceable in tests
var sleep = time.Sleep

// Policy retries an operation on transient failures with exponential backoff.
// The delay starts at BaseDelay and doubles after every failed attempt.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Default returns the policy used when the configuration leaves retries unset.
func Default() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
	}
}

// Do runs op until it succeeds, returns a non-retryable error, exhausts the
// attempt budget or the context is canceled. The last error seen is returned.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, op func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	delay := p.BaseDelay
	if delay <= 0 {
		delay = DefaultBaseDelay
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if werr := waitFor(ctx, delay); werr != nil {
				return werr
			}
			delay *= 2
		}

		if err = op(); err == nil {
			return nil
		}

		if retryable != nil && !retryable(err) {
			return err
		}
	}

	return err
}

// waitFor blocks for the given duration but gives up early when the context
// is canceled.
func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
