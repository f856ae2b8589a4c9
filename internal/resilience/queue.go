package resilience

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/prilive-com/tgbots/tg"
)

// QueueConfig configures the outbound message queue. Limits are expressed the
// way the Bot API documents them: at most N messages per time window.
type QueueConfig struct {
	AllBurstLimit   int // messages across all chats per AllTimeLimit
	AllTimeLimit    time.Duration
	GroupBurstLimit int // messages per group chat per GroupTimeLimit
	GroupTimeLimit  time.Duration
	MaxGroups       int // tracked group limiters; 0 = 10000
}

// DefaultQueueConfig returns the Bot API flood limits: 29 messages per 1024ms
// overall and 20 messages per minute per group.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		AllBurstLimit:   29,
		AllTimeLimit:    1024 * time.Millisecond,
		GroupBurstLimit: 20,
		GroupTimeLimit:  time.Minute,
		MaxGroups:       10000,
	}
}

// MessageQueue delays outbound messages so a bot stays under the provider's
// flood limits. Wait blocks the caller; there is no background sender.
type MessageQueue struct {
	cfg    QueueConfig
	all    *rate.Limiter
	mu     sync.Mutex
	groups map[int64]*groupEntry

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

type groupEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic.Int64 // UnixNano
}

// NewMessageQueue creates a queue and starts its idle-group cleanup.
func NewMessageQueue(cfg QueueConfig) *MessageQueue {
	def := DefaultQueueConfig()
	if cfg.AllBurstLimit <= 0 {
		cfg.AllBurstLimit = def.AllBurstLimit
	}
	if cfg.AllTimeLimit <= 0 {
		cfg.AllTimeLimit = def.AllTimeLimit
	}
	if cfg.GroupBurstLimit <= 0 {
		cfg.GroupBurstLimit = def.GroupBurstLimit
	}
	if cfg.GroupTimeLimit <= 0 {
		cfg.GroupTimeLimit = def.GroupTimeLimit
	}
	if cfg.MaxGroups <= 0 {
		cfg.MaxGroups = def.MaxGroups
	}

	q := &MessageQueue{
		cfg:    cfg,
		all:    newWindowLimiter(cfg.AllBurstLimit, cfg.AllTimeLimit),
		groups: make(map[int64]*groupEntry),
		done:   make(chan struct{}),
	}
	go q.cleanup()
	return q
}

func newWindowLimiter(burst int, window time.Duration) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(burst)/window.Seconds()), burst)
}

// Config returns the effective configuration.
func (q *MessageQueue) Config() QueueConfig {
	return q.cfg
}

// Wait blocks until a message to chatID may be sent. Group chats wait on
// their own limiter first, then on the all-senders limiter.
func (q *MessageQueue) Wait(ctx context.Context, chatID int64, isGroup bool) error {
	if q.closed.Load() {
		return tg.ErrClosed
	}
	if isGroup {
		if err := q.group(chatID).Wait(ctx); err != nil {
			return err
		}
	}
	return q.all.Wait(ctx)
}

// Close stops the cleanup goroutine. Later Wait calls fail with tg.ErrClosed.
func (q *MessageQueue) Close() {
	q.closeOnce.Do(func() {
		q.closed.Store(true)
		close(q.done)
	})
}

// GroupCount returns the number of tracked group limiters.
func (q *MessageQueue) GroupCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.groups)
}

func (q *MessageQueue) group(chatID int64) *rate.Limiter {
	now := time.Now().UnixNano()

	q.mu.Lock()
	defer q.mu.Unlock()

	if entry, ok := q.groups[chatID]; ok {
		entry.lastUsed.Store(now)
		return entry.limiter
	}

	if len(q.groups) >= q.cfg.MaxGroups {
		var oldestKey int64
		oldest := now
		for k, e := range q.groups {
			if t := e.lastUsed.Load(); t < oldest {
				oldest = t
				oldestKey = k
			}
		}
		delete(q.groups, oldestKey)
	}

	entry := &groupEntry{limiter: newWindowLimiter(q.cfg.GroupBurstLimit, q.cfg.GroupTimeLimit)}
	entry.lastUsed.Store(now)
	q.groups[chatID] = entry
	return entry.limiter
}

func (q *MessageQueue) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-q.done:
			return
		case <-ticker.C:
			q.evictIdle(time.Now().Add(-2 * q.cfg.GroupTimeLimit))
		}
	}
}

func (q *MessageQueue) evictIdle(before time.Time) {
	threshold := before.UnixNano()
	q.mu.Lock()
	defer q.mu.Unlock()
	for chatID, entry := range q.groups {
		if entry.lastUsed.Load() < threshold {
			delete(q.groups, chatID)
		}
	}
}
