package util

import (
	"context"
	"fmt"
	"time"
)

// Retry calls f until it succeeds, fails with an error retryable rejects, or
// maxRetries additional attempts spaced by d are exhausted. A nil retryable retries
// every error.
func Retry[T any](ctx context.Context, f func(context.Context) (T, error), retryable func(error) bool, maxRetries int, d time.Duration) (v T, err error) {
	for i := 0; i <= maxRetries; i++ {
		if v, err = f(ctx); err == nil {
			return v, nil
		} else if retryable != nil && !retryable(err) {
			return v, err
		} else if i == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return *new(T), ctx.Err()
		case <-time.After(d):
		}
	}
	return v, fmt.Errorf("max retries reached: %w", err)
}
