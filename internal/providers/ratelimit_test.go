package providers

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	t.Run("consume within burst", func(t *testing.T) {
		rl := NewRateLimiter(5.0)

		for i := 0; i < 5; i++ {
			if !rl.TryConsume() {
				t.Fatalf("TryConsume() = false on call %d within burst", i+1)
			}
		}
		if rl.TryConsume() {
			t.Error("TryConsume() = true with an empty bucket")
		}
	})

	t.Run("refills over time", func(t *testing.T) {
		rl := NewRateLimiter(100.0)
		for rl.TryConsume() {
		}

		time.Sleep(50 * time.Millisecond)

		if !rl.TryConsume() {
			t.Error("expected token after refill interval")
		}
	})

	t.Run("wait blocks until token", func(t *testing.T) {
		rl := NewRateLimiter(50.0)
		for rl.TryConsume() {
		}

		start := time.Now()
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("Wait() took %v, expected under a second at 50 rps", elapsed)
		}
	})

	t.Run("wait honors context", func(t *testing.T) {
		rl := NewRateLimiter(0.5)
		for rl.TryConsume() {
		}

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if err := rl.Wait(ctx); err == nil {
			t.Error("expected context deadline error")
		}
	})

	t.Run("record 429 drains bucket", func(t *testing.T) {
		rl := NewRateLimiter(10.0)

		rl.Record429()

		if rl.TryConsume() {
			t.Error("TryConsume() = true immediately after a 429")
		}
		status := rl.Status()
		if status.Last429Time.IsZero() {
			t.Error("Last429Time not recorded")
		}
	})

	t.Run("status reports consumption", func(t *testing.T) {
		rl := NewRateLimiter(10.0)
		rl.TryConsume()
		rl.TryConsume()

		status := rl.Status()
		if status.TotalConsumed != 2 {
			t.Errorf("TotalConsumed = %d, want 2", status.TotalConsumed)
		}
		if status.TokensLimit != 10 {
			t.Errorf("TokensLimit = %d, want 10", status.TokensLimit)
		}
	})

	t.Run("zero rps gets default", func(t *testing.T) {
		rl := NewRateLimiter(0)
		if rl.rps != 10.0 {
			t.Errorf("rps = %f, want default 10.0", rl.rps)
		}
	})

	t.Run("fractional rps keeps burst floor", func(t *testing.T) {
		rl := NewRateLimiter(0.5)
		if rl.burst != 1.0 {
			t.Errorf("burst = %f, want floor of 1.0", rl.burst)
		}
		if !rl.TryConsume() {
			t.Error("expected one token available at start")
		}
	})
}
