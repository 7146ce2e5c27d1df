package provider

import (
	"context"
	"errors"
	"testing"
)

func TestWithRetry(t *testing.T) {
	transient := errors.New("connection reset")

	tests := []struct {
		name         string
		maxRetries   int
		failures     int
		retryable    bool
		wantAttempts int
		wantErr      bool
	}{
		{"succeeds first time", 3, 0, true, 1, false},
		{"recovers after transient failures", 3, 2, true, 3, false},
		{"gives up after max retries", 2, 10, true, 3, true},
		{"zero retries means one attempt", 0, 10, true, 1, true},
		{"non-retryable stops immediately", 3, 10, false, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := withRetry(context.Background(), tt.maxRetries, func() (bool, error) {
				attempts++
				if attempts <= tt.failures {
					return tt.retryable, transient
				}
				return true, nil
			})

			if attempts != tt.wantAttempts {
				t.Errorf("attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, transient) {
				t.Errorf("expected wrapped transient error, got %v", err)
			}
		})
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := withRetry(ctx, 5, func() (bool, error) {
		attempts++
		return true, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
