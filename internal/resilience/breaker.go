package resilience

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures NewBreaker. Zero values fall back to the
// defaults applied by NewBreaker.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32        // probes let through while half-open
	Interval    time.Duration // closed-state counter reset period
	Timeout     time.Duration // open to half-open delay

	// The breaker trips on Threshold consecutive failures, or once
	// MinRequests have been seen and the failure share reaches FailureRatio.
	Threshold    uint32
	MinRequests  uint32
	FailureRatio float64

	// IsSuccessful reports errors that should not count as failures.
	// Nil counts every non-nil error.
	IsSuccessful func(err error) bool

	Logger *slog.Logger
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.MaxRequests == 0 {
		c.MaxRequests = 5
	}
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Threshold == 0 {
		c.Threshold = 5
	}
	if c.MinRequests == 0 {
		c.MinRequests = 10
	}
	if c.FailureRatio <= 0 {
		c.FailureRatio = 0.5
	}
	return c
}

func (c BreakerConfig) readyToTrip(counts gobreaker.Counts) bool {
	if counts.ConsecutiveFailures >= c.Threshold {
		return true
	}
	if counts.Requests < c.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureRatio
}

// NewBreaker builds a gobreaker circuit breaker for one bot connection.
func NewBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	cfg = cfg.withDefaults()

	settings := gobreaker.Settings{
		Name:         cfg.Name,
		MaxRequests:  cfg.MaxRequests,
		Interval:     cfg.Interval,
		Timeout:      cfg.Timeout,
		IsSuccessful: cfg.IsSuccessful,
		ReadyToTrip:  cfg.readyToTrip,
	}
	if logger := cfg.Logger; logger != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		}
	}
	return gobreaker.NewCircuitBreaker[T](settings)
}
