// Package retry bounds transient-failure retries for idempotent reads.
// Mutations must never go through it: a lost response to a paid operation is
// surfaced to the caller instead of being replayed.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds the retry loop.
type Policy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
}

// DefaultPolicy matches the read paths: four attempts with growing waits.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     4,
		InitialInterval: 500 * time.Millisecond,
	}
}

// Permanent marks an error as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op until it succeeds, the policy is exhausted, or the context is
// cancelled.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval

	var result T
	err := backoff.Retry(func() error {
		v, err := op()
		if err != nil {
			return err
		}
		result = v
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, p.MaxAttempts-1), ctx))
	return result, err
}
