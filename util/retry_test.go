package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTemporary = errors.New("temporary")

func TestRetry(t *testing.T) {
	calls := 0
	v, err := Retry(context.Background(), func(context.Context) (int, error) {
		if calls++; calls < 3 {
			return 0, errTemporary
		}
		return calls, nil
	}, nil, 5, time.Millisecond)
	if v != 3 || err != nil {
		t.Errorf("got %v %v", v, err)
	}
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, errTemporary
	}, func(err error) bool { return errors.Is(err, errTemporary) }, 2, time.Millisecond)
	if !errors.Is(err, errTemporary) || calls != 3 {
		t.Errorf("got %v after %d calls", err, calls)
	}
}

func TestRetryNotRetryable(t *testing.T) {
	calls, permanent := 0, errors.New("permanent")
	_, err := Retry(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, permanent
	}, func(err error) bool { return errors.Is(err, errTemporary) }, 5, time.Millisecond)
	if err != permanent || calls != 1 {
		t.Errorf("got %v after %d calls", err, calls)
	}
}

func TestRetryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Retry(ctx, func(context.Context) (int, error) { return 0, errTemporary }, nil, 5, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v", err)
	}
}
