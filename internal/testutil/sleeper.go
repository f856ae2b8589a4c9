package testutil

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/prilive-com/tgbots/internal/resilience"
)

var _ resilience.Sleeper = (*FakeSleeper)(nil)

// FakeSleeper stands in for resilience.Sleeper. It returns at once and
// remembers every requested wait. OnSleep runs after each wait is recorded,
// outside the lock, so it may flip mock server behaviour or cancel a context.
type FakeSleeper struct {
	OnSleep func(d time.Duration)

	mu    sync.Mutex
	waits []time.Duration
}

func (f *FakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	f.mu.Lock()
	f.waits = append(f.waits, d)
	f.mu.Unlock()

	if f.OnSleep != nil {
		f.OnSleep(d)
	}
	return nil
}

func (f *FakeSleeper) Calls() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.waits)
}

func (f *FakeSleeper) CallCount() int {
	return len(f.Calls())
}

// LastCall is zero until Sleep has been called.
func (f *FakeSleeper) LastCall() time.Duration {
	waits := f.Calls()
	if len(waits) == 0 {
		return 0
	}
	return waits[len(waits)-1]
}

// Total is the sum of all recorded waits.
func (f *FakeSleeper) Total() time.Duration {
	var sum time.Duration
	for _, d := range f.Calls() {
		sum += d
	}
	return sum
}
