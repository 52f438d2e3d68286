package util

import (
	"errors"
	"testing"
)

func TestRetryErr(t *testing.T) {
	t.Run("stops on first success", func(t *testing.T) {
		calls := 0
		err := RetryErr(3, func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Fatalf("unexpected call count: got %d, want 1", calls)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := RetryErr(3, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 3 {
			t.Fatalf("unexpected call count: got %d, want 3", calls)
		}
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		boom := errors.New("boom")
		err := RetryErr(2, func() error { return boom })
		if !errors.Is(err, boom) {
			t.Fatalf("expected last error, got %v", err)
		}
	})

	t.Run("non-positive tries defaults to one", func(t *testing.T) {
		calls := 0
		_ = RetryErr(0, func() error {
			calls++
			return errors.New("x")
		})
		if calls != 1 {
			t.Fatalf("unexpected call count: got %d, want 1", calls)
		}
	})
}
