package resilience

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// Sleeper abstracts time-based waiting for testing.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper waits on the wall clock.
type RealSleeper struct{}

// Sleep waits for d or until ctx is cancelled.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BackoffConfig describes exponential back-off with jitter.
type BackoffConfig struct {
	Initial time.Duration
	Max     time.Duration
	Factor  float64
	Jitter  float64 // 0.0-1.0, fraction of the delay added at random
}

// DefaultBackoffConfig returns sensible defaults.
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		Initial: time.Second,
		Max:     60 * time.Second,
		Factor:  2.0,
		Jitter:  0.25,
	}
}

// Delay returns the wait before retry number attempt (1-based).
func (c BackoffConfig) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	factor := c.Factor
	if factor < 1 {
		factor = 1
	}

	delay := float64(c.Initial) * math.Pow(factor, float64(attempt-1))
	if c.Max > 0 && delay > float64(c.Max) {
		delay = float64(c.Max)
	}

	// crypto/rand jitter, added on top of the base delay
	if c.Jitter > 0 {
		jitterRange := int64(delay * c.Jitter)
		if jitterRange > 0 {
			n, err := rand.Int(rand.Reader, big.NewInt(jitterRange))
			if err == nil {
				delay += float64(n.Int64())
			}
		}
	}

	return time.Duration(delay)
}
