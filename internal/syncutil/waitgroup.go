package syncutil

import (
	"log/slog"
	"sync"
)

// Go runs fn in a goroutine tracked by wg. A panic in fn is logged under
// name instead of crashing the process; wg is released either way.
func Go(wg *sync.WaitGroup, logger *slog.Logger, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("goroutine panicked", "goroutine", name, "panic", r)
			}
		}()
		fn()
	}()
}
