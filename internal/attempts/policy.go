// Package attempts expresses how many times an external call is tried.
//
// Every outbound call in jarvis (requirement fetch, completion) goes through a
// Policy. The default is a single attempt with no backoff; hardening is a
// configuration change.
package attempts

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// minBackoff is used when a Policy allows retries but configures no delay;
// go-retry rejects non-positive constant backoffs.
const minBackoff = time.Millisecond

// Policy bounds the attempts made for one operation.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first. Values
	// below 1 are treated as 1.
	MaxAttempts int
	// Backoff is the constant delay between attempts.
	Backoff time.Duration
	// Retryable reports whether err is worth another attempt. A nil func
	// treats every error as retryable.
	Retryable func(err error) bool
}

// Single returns the default policy: one attempt, no backoff.
func Single() Policy {
	return Policy{MaxAttempts: 1}
}

// Attempts returns the effective number of tries.
func (p Policy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempts are
// exhausted, or ctx is done. The last error is returned unwrapped.
func (p Policy) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = minBackoff
	}

	b := retry.WithMaxRetries(uint64(p.Attempts()-1), retry.NewConstant(backoff))

	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}

		if attempt < p.Attempts() {
			slog.Debug("Attempt failed, retrying", "operation", name, "attempt", attempt, "max", p.Attempts(), "error", err)
		}
		return retry.RetryableError(err)
	})
}
