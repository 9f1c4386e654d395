package pool

import (
	"testing"
	"time"
)

func TestWithRateLimit(t *testing.T) {
	t.Run("limits throughput", func(t *testing.T) {
		data := make([]int, 6)
		for i := range data {
			data[i] = i
		}

		start := time.Now()
		out, err := Map(data, func(v int) int { return v + 1 }, WithRateLimit(50, 1))
		elapsed := time.Since(start)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Burst of 1 at 50/s: 5 waits of 20ms after the first token.
		if elapsed < 80*time.Millisecond {
			t.Errorf("expected rate limiting to take at least 80ms, took %v", elapsed)
		}

		for i, slot := range out {
			if v, ok := slot.Get(); !ok || v != i+1 {
				t.Errorf("slot %d: expected Some(%d), got %v", i, i+1, slot)
			}
		}
	})

	t.Run("invalid values disable the limiter", func(t *testing.T) {
		tests := []struct {
			name  string
			rate  float64
			burst int
		}{
			{"zero rate", 0, 5},
			{"negative rate", -1, 5},
			{"zero burst", 10, 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := newConfig(WithRateLimit(tt.rate, tt.burst))
				if cfg.rateLimiter != nil {
					t.Error("expected no rate limiter")
				}
			})
		}
	})
}

func TestWithCPUAffinity(t *testing.T) {
	data := []string{"x", "y", "z", "w"}

	out, err := Map(data, func(s string) string { return s + s }, WithCPUAffinity())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, s := range data {
		if want := Some(s + s); out[i] != want {
			t.Errorf("slot %d: expected %v, got %v", i, want, out[i])
		}
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := newConfig()

	if cfg.maxWorkers != DefaultMaxWorkers {
		t.Errorf("expected max workers %d, got %d", DefaultMaxWorkers, cfg.maxWorkers)
	}
	if cfg.rateLimiter != nil {
		t.Error("expected no rate limiter by default")
	}
	if cfg.pinCPU {
		t.Error("expected CPU pinning off by default")
	}
	if cfg.onJobStart != nil || cfg.onJobEnd != nil {
		t.Error("expected no hooks by default")
	}
}
