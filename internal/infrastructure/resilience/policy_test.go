package resilience

import (
	"testing"
	"time"
)

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{RetryInitialBackoff: 5 * time.Second, RetryMaxBackoff: time.Second}.withDefaults()

	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("RetryMaxAttempts = %d, want 3", cfg.RetryMaxAttempts)
	}
	if cfg.RetryMaxBackoff != 5*time.Second {
		t.Fatalf("expected max backoff raised to the initial backoff, got %s", cfg.RetryMaxBackoff)
	}
	if cfg.BreakerFailureRatio != 0.5 || cfg.BreakerHalfOpenMaxCalls != 2 {
		t.Fatalf("unexpected breaker defaults %+v", cfg)
	}
}

func TestConfigBackoff(t *testing.T) {
	cfg := Config{
		RetryMaxAttempts:    5,
		RetryInitialBackoff: 100 * time.Millisecond,
		RetryMaxBackoff:     300 * time.Millisecond,
		RetryMultiplier:     2,
	}.withDefaults()

	cases := []struct {
		attempt int
		hint    time.Duration
		want    time.Duration
	}{
		{attempt: 1, want: 100 * time.Millisecond},
		{attempt: 2, want: 200 * time.Millisecond},
		{attempt: 3, want: 300 * time.Millisecond},
		{attempt: 9, want: 300 * time.Millisecond},
		{attempt: 1, hint: 250 * time.Millisecond, want: 250 * time.Millisecond},
		{attempt: 1, hint: time.Minute, want: 300 * time.Millisecond},
		{attempt: 2, hint: 50 * time.Millisecond, want: 200 * time.Millisecond},
	}
	for _, tc := range cases {
		if got := cfg.backoff(tc.attempt, tc.hint); got != tc.want {
			t.Errorf("backoff(%d, %s) = %s, want %s", tc.attempt, tc.hint, got, tc.want)
		}
	}
}

func TestExecutorConfigAppliesDefaults(t *testing.T) {
	exec := NewExecutor(Config{})
	if got := exec.Config(); got.RetryInitialBackoff != 200*time.Millisecond || got.BreakerOpenTimeout != 30*time.Second {
		t.Fatalf("unexpected effective config %+v", got)
	}
}
