package store

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Retrying wraps a Store with bounded retry and linear backoff for transient
// failures. Exhaustion returns the last error to the caller; nothing is
// fatal, the operator simply re-attempts. Subscriptions are not retried.
type Retrying struct {
	inner    Store
	attempts int
	backoff  time.Duration
}

func WithRetry(inner Store, attempts int, backoff time.Duration) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrying{inner: inner, attempts: attempts, backoff: backoff}
}

func (r *Retrying) Read(ctx context.Context, path string, dest interface{}) (bool, error) {
	var found bool
	err := r.do(ctx, "read", path, func() error {
		var err error
		found, err = r.inner.Read(ctx, path, dest)
		return err
	})
	return found, err
}

func (r *Retrying) Write(ctx context.Context, path string, value interface{}) error {
	return r.do(ctx, "write", path, func() error {
		return r.inner.Write(ctx, path, value)
	})
}

func (r *Retrying) Patch(ctx context.Context, path string, fields map[string]interface{}) error {
	return r.do(ctx, "patch", path, func() error {
		return r.inner.Patch(ctx, path, fields)
	})
}

func (r *Retrying) Append(ctx context.Context, path string, value interface{}) (string, error) {
	var key string
	err := r.do(ctx, "append", path, func() error {
		var err error
		key, err = r.inner.Append(ctx, path, value)
		return err
	})
	return key, err
}

func (r *Retrying) Subscribe(path string, onChange func(raw json.RawMessage)) (func(), error) {
	return r.inner.Subscribe(path, onChange)
}

func (r *Retrying) do(ctx context.Context, op, path string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == r.attempts {
			break
		}
		log.Printf("store: %s %s failed (attempt %d/%d): %v", op, path, attempt, r.attempts, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}
	return err
}
