/*
Copyright 2026 The Role Framing Experiment Authors
SPDX-License-Identifier: Apache-2.0
*/

package retry_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yw4343/llm-role-framing-and-decision-bias/gateway/retry"
)

func testConfig() retry.Config {
	return retry.Config{
		MaxRetries:  3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  10 * time.Millisecond,
		MaxJitter:   time.Millisecond,
	}
}

func alwaysRetryable(err error) bool { return err != nil }

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	result, err := retry.Do(context.Background(), testConfig(), "complete", alwaysRetryable, func() (string, error) {
		attempts.Add(1)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("result = %q, want %q", result, "ok")
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("attempts = %d, want 1", got)
	}
}

func TestDo_RecoversAfterRetries(t *testing.T) {
	t.Parallel()
	var attempts atomic.Int32
	rateLimited := errors.New("429 too many requests")

	result, err := retry.Do(context.Background(), testConfig(), "complete", alwaysRetryable, func() (string, error) {
		if attempts.Add(1) < 3 {
			return "", rateLimited
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "recovered" {
		t.Fatalf("result = %q, want %q", result, "recovered")
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
}

func TestDo_ExhaustsRetries(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	rateLimited := errors.New("429 too many requests")

	var attempts atomic.Int32
	_, err := retry.Do(context.Background(), cfg, "complete", alwaysRetryable, func() (string, error) {
		attempts.Add(1)
		return "", rateLimited
	})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	// 1 initial attempt + MaxRetries retries.
	if got := attempts.Load(); got != 4 {
		t.Fatalf("attempts = %d, want 4", got)
	}
	if !errors.Is(err, rateLimited) {
		t.Fatalf("expected wrapped original error, got: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "complete failed after 3 retries") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestDo_NonRetryableShortCircuits(t *testing.T) {
	t.Parallel()
	permanent := errors.New("400 bad request")

	var attempts atomic.Int32
	_, err := retry.Do(context.Background(), testConfig(), "complete", func(error) bool { return false }, func() (string, error) {
		attempts.Add(1)
		return "", permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected the original error, got: %v", err)
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("attempts = %d, want 1 (no retries)", got)
	}
}

func TestDo_ContextCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	rateLimited := errors.New("429 too many requests")

	var attempts atomic.Int32
	_, err := retry.Do(ctx, testConfig(), "complete", alwaysRetryable, func() (string, error) {
		if attempts.Add(1) == 1 {
			cancel()
		}
		return "", rateLimited
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}

func TestDo_ZeroRetries(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.MaxRetries = 0

	var attempts atomic.Int32
	_, err := retry.Do(context.Background(), cfg, "complete", alwaysRetryable, func() (string, error) {
		attempts.Add(1)
		return "", errors.New("503 unavailable")
	})
	if err == nil {
		t.Fatal("expected error with zero retries")
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("attempts = %d, want 1", got)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name string
		cfg  retry.Config
		ok   bool
	}{
		{"default", retry.DefaultConfig(), true},
		{"zero", retry.Config{}, true},
		{"negative retries", retry.Config{MaxRetries: -1}, false},
		{"negative backoff", retry.Config{BaseBackoff: -time.Second}, false},
		{"negative max backoff", retry.Config{MaxBackoff: -time.Second}, false},
		{"negative jitter", retry.Config{MaxJitter: -time.Second}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tc.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
