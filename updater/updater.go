// Package updater runs the long-polling fetch loop for one bot and feeds
// every update to the bot's dispatcher.
package updater

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/prilive-com/tgbots/botapi"
	"github.com/prilive-com/tgbots/dispatch"
	"github.com/prilive-com/tgbots/internal/resilience"
	"github.com/prilive-com/tgbots/internal/syncutil"
	"github.com/prilive-com/tgbots/tg"
)

var (
	ErrAlreadyRunning = errors.New("tgbots: updater already running")
	ErrTooManyErrors  = errors.New("tgbots: updater stopped after too many consecutive errors")
)

// Config configures the fetch loop.
type Config struct {
	Timeout        int // long-poll timeout in seconds
	Limit          int
	AllowedUpdates []string
	MaxErrors      int // consecutive failures before the loop stops; 0 = never
	Backoff        resilience.BackoffConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:   30,
		Limit:     100,
		MaxErrors: 10,
		Backoff:   resilience.DefaultBackoffConfig(),
	}
}

// Updater polls getUpdates for one bot.
type Updater struct {
	bot        *botapi.Bot
	dispatcher *dispatch.Dispatcher
	cfg        Config
	logger     *slog.Logger
	sleeper    resilience.Sleeper

	running           atomic.Bool
	offset            atomic.Int64
	consecutiveErrors atomic.Int32

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
	wg      sync.WaitGroup
}

// Option configures the Updater.
type Option func(*Updater)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *Updater) {
		u.logger = logger
	}
}

// WithSleeper replaces the back-off clock (useful for testing).
func WithSleeper(s resilience.Sleeper) Option {
	return func(u *Updater) {
		u.sleeper = s
	}
}

// New creates an Updater. It does not start polling.
func New(bot *botapi.Bot, d *dispatch.Dispatcher, cfg Config, opts ...Option) *Updater {
	def := DefaultConfig()
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	if cfg.Limit <= 0 || cfg.Limit > 100 {
		cfg.Limit = def.Limit
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = def.Backoff
	}

	u := &Updater{bot: bot, dispatcher: d, cfg: cfg}
	for _, opt := range opts {
		opt(u)
	}
	if u.logger == nil {
		u.logger = slog.Default()
	}
	if u.sleeper == nil {
		u.sleeper = resilience.RealSleeper{}
	}
	return u
}

// Bot returns the polled bot.
func (u *Updater) Bot() *botapi.Bot { return u.bot }

// Dispatcher returns the dispatcher updates are fed to.
func (u *Updater) Dispatcher() *dispatch.Dispatcher { return u.dispatcher }

// Start begins polling in the background.
func (u *Updater) Start(ctx context.Context) error {
	if !u.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	u.mu.Lock()
	u.cancel = cancel
	u.done = done
	u.lastErr = nil
	u.mu.Unlock()

	syncutil.Go(&u.wg, u.logger, "updater", func() {
		defer close(done)
		defer u.running.Store(false)
		err := u.pollLoop(loopCtx)
		u.mu.Lock()
		u.lastErr = err
		u.mu.Unlock()
	})

	u.logger.Info("long polling started",
		"bot", u.bot.Token().Fingerprint(),
		"timeout", u.cfg.Timeout,
		"limit", u.cfg.Limit,
		"max_errors", u.cfg.MaxErrors,
	)
	return nil
}

// Run polls until ctx is cancelled or the loop gives up.
func (u *Updater) Run(ctx context.Context) error {
	if err := u.Start(ctx); err != nil {
		return err
	}
	u.mu.Lock()
	done := u.done
	u.mu.Unlock()
	<-done

	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastErr
}

// Stop ends polling and waits for the loop to exit.
func (u *Updater) Stop() {
	u.mu.Lock()
	cancel := u.cancel
	u.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	u.wg.Wait()
}

// Running returns true if polling is active.
func (u *Updater) Running() bool {
	return u.running.Load()
}

// IsHealthy returns health status for probes.
func (u *Updater) IsHealthy() bool {
	if u.cfg.MaxErrors == 0 {
		return u.running.Load()
	}
	return u.running.Load() && int(u.consecutiveErrors.Load()) < u.cfg.MaxErrors
}

// ConsecutiveErrors returns the current error count.
func (u *Updater) ConsecutiveErrors() int32 {
	return u.consecutiveErrors.Load()
}

// Offset returns the next update id to fetch.
func (u *Updater) Offset() int64 {
	return u.offset.Load()
}

func (u *Updater) pollLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			u.logger.Info("long polling stopped", "bot", u.bot.Token().Fingerprint())
			return nil
		}

		updates, err := u.bot.GetUpdates(ctx, botapi.GetUpdatesRequest{
			Offset:         int(u.offset.Load()),
			Limit:          u.cfg.Limit,
			Timeout:        u.cfg.Timeout,
			AllowedUpdates: u.cfg.AllowedUpdates,
		})
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			errCount := u.consecutiveErrors.Add(1)
			wait := tg.RetryAfter(err)
			if wait == 0 {
				wait = u.cfg.Backoff.Delay(int(errCount))
			}
			u.logger.Error("fetch updates failed",
				"bot", u.bot.Token().Fingerprint(),
				"error", err,
				"consecutive_errors", errCount,
				"retry_delay", wait,
			)

			if u.cfg.MaxErrors > 0 && int(errCount) >= u.cfg.MaxErrors {
				u.logger.Error("max consecutive errors exceeded", "max_errors", u.cfg.MaxErrors)
				return ErrTooManyErrors
			}
			// A cancelled sleep ends the loop at the top.
			_ = u.sleeper.Sleep(ctx, wait)
			continue
		}

		u.consecutiveErrors.Store(0)

		// The offset only moves past an update once the dispatcher has seen it.
		for i := range updates {
			update := &updates[i]
			if err := u.dispatcher.ProcessUpdate(ctx, update); err != nil {
				u.logger.Warn("update not processed", "update_id", update.UpdateID, "error", err)
				return nil
			}
			if int64(update.UpdateID) >= u.offset.Load() {
				u.offset.Store(int64(update.UpdateID) + 1)
			}
		}
	}
}
