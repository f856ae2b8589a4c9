// Package syncutil provides small concurrency helpers used across tgbots.
//
// # WaitGroup Helper
//
// Go runs a goroutine tracked by a WaitGroup and logs, rather than
// propagates, a panic. The dispatcher's workers and the updater's fetch loop
// run under it:
//
//	var wg sync.WaitGroup
//	syncutil.Go(&wg, logger, "dispatch-worker", d.worker)
//	wg.Wait()
//
// # Ordered Set
//
// OrderedSet is a concurrency-safe set that remembers the order in which
// members were first added. The registry keeps its used-token set in one:
//
//	var used syncutil.OrderedSet[string]
//	used.Add("a")
//	used.Add("a") // no-op
//	used.Snapshot() // ["a"]
package syncutil
