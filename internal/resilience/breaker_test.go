package resilience_test

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"

	"github.com/prilive-com/tgbots/internal/resilience"
)

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	cb := resilience.NewBreaker[int](resilience.BreakerConfig{Name: "test", Threshold: 2})

	fail := func() (int, error) { return 0, errors.New("boom") }
	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (int, error) { return 1, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreaker_FailureRatio(t *testing.T) {
	cb := resilience.NewBreaker[int](resilience.BreakerConfig{
		Name:         "ratio",
		Threshold:    100,
		MinRequests:  4,
		FailureRatio: 0.5,
	})

	ok := func() (int, error) { return 1, nil }
	fail := func() (int, error) { return 0, errors.New("boom") }
	for _, fn := range []func() (int, error){ok, fail, ok} {
		_, _ = cb.Execute(fn)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestBreaker_IsSuccessfulIgnoresErrors(t *testing.T) {
	ignored := errors.New("client error")
	cb := resilience.NewBreaker[int](resilience.BreakerConfig{
		Name:         "test",
		Threshold:    1,
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, ignored) },
	})

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (int, error) { return 0, ignored })
		assert.ErrorIs(t, err, ignored)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
