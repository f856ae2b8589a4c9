// Package resilience provides the circuit breaker, outbound message queue and
// back-off helpers used by bot connections and updaters.
// Uses sony/gobreaker for circuit breaking and golang.org/x/time/rate for the
// message queue.
package resilience
