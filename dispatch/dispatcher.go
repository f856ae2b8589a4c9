package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/prilive-com/tgbots/botapi"
	"github.com/prilive-com/tgbots/internal/syncutil"
	"github.com/prilive-com/tgbots/tg"
)

var (
	// ErrStopPropagation, returned by a handler, skips all later groups.
	ErrStopPropagation = errors.New("tgbots: stop propagation")

	// ErrStopped is returned by ProcessUpdate after Stop.
	ErrStopped = errors.New("tgbots: dispatcher stopped")

	// ErrNoChat is returned by Context.Reply for updates without a chat.
	ErrNoChat = errors.New("tgbots: update has no chat")
)

// Options configures a Dispatcher.
type Options struct {
	// Workers is the size of the pool running Async handlers.
	// 0 runs them synchronously.
	Workers int

	// UseContext gives handlers persistent chat, user and bot data.
	UseContext bool
}

// Dispatcher routes updates of one bot to its handlers.
type Dispatcher struct {
	bot    *botapi.Bot
	logger *slog.Logger
	opts   Options

	mu          sync.RWMutex
	groups      map[int][]Handler
	order       []int
	errHandlers []ErrorHandler

	data *dataStore

	jobs     chan func()
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  atomic.Bool
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher bound to bot.
func New(bot *botapi.Bot, opts Options, options ...Option) *Dispatcher {
	d := &Dispatcher{
		bot:    bot,
		opts:   opts,
		groups: make(map[int][]Handler),
	}
	for _, o := range options {
		o(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if opts.UseContext {
		d.data = newDataStore()
	}
	if opts.Workers > 0 {
		d.jobs = make(chan func(), opts.Workers*4)
		for i := 0; i < opts.Workers; i++ {
			syncutil.Go(&d.wg, d.logger, "dispatch-worker", d.worker)
		}
	}
	return d
}

// Bot returns the bot the dispatcher is bound to.
func (d *Dispatcher) Bot() *botapi.Bot { return d.bot }

// Options returns the dispatcher options.
func (d *Dispatcher) Options() Options { return d.opts }

// AddHandler registers h in group. Lower groups run first.
func (d *Dispatcher) AddHandler(h Handler, group int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.groups[group]; !ok {
		d.order = append(d.order, group)
		slices.Sort(d.order)
	}
	d.groups[group] = append(d.groups[group], h)
}

// AddErrorHandler registers a callback for handler errors.
func (d *Dispatcher) AddErrorHandler(h ErrorHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errHandlers = append(d.errHandlers, h)
}

// ProcessUpdate runs the handlers for u. Handler errors go to the error
// handlers; they are not returned.
func (d *Dispatcher) ProcessUpdate(ctx context.Context, u *tg.Update) error {
	if d.stopped.Load() {
		return ErrStopped
	}

	d.mu.RLock()
	order := slices.Clone(d.order)
	groups := make([][]Handler, len(order))
	for i, g := range order {
		groups[i] = slices.Clone(d.groups[g])
	}
	d.mu.RUnlock()

	for _, handlers := range groups {
		for _, h := range handlers {
			if !h.Check(u) {
				continue
			}
			c := d.newContext(ctx, u)
			if isAsync(h) && d.jobs != nil {
				d.submit(ctx, func() { d.run(h, c) })
				break
			}
			if errors.Is(d.run(h, c), ErrStopPropagation) {
				return nil
			}
			break
		}
	}
	return nil
}

// Stop waits for queued async handlers and rejects further updates.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.stopped.Store(true)
		if d.jobs != nil {
			close(d.jobs)
		}
		d.wg.Wait()
	})
}

func (d *Dispatcher) newContext(ctx context.Context, u *tg.Update) *Context {
	c := &Context{Context: ctx, Bot: d.bot, Update: u}
	if d.data != nil {
		c.BotData = &d.data.bot
		if chat := u.EffectiveChat(); chat != nil {
			c.ChatData = d.data.chat(chat.ID)
		}
		if user := u.EffectiveUser(); user != nil {
			c.UserData = d.data.user(user.ID)
		}
	}
	return c
}

func (d *Dispatcher) run(h Handler, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("handler panicked", "update_id", c.Update.UpdateID, "panic", r)
			err = nil
		}
	}()

	err = h.Handle(c)
	if err != nil && !errors.Is(err, ErrStopPropagation) {
		d.handleError(c, err)
	}
	return err
}

func (d *Dispatcher) handleError(c *Context, err error) {
	d.mu.RLock()
	handlers := slices.Clone(d.errHandlers)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		d.logger.Warn("unhandled handler error", "update_id", c.Update.UpdateID, "error", err)
		return
	}
	for _, eh := range handlers {
		eh(c, err)
	}
}

func (d *Dispatcher) submit(ctx context.Context, job func()) {
	defer func() {
		// Stop closed the channel between the stopped check and the send.
		if recover() != nil {
			d.logger.Warn("dropped async handler after stop")
		}
	}()
	select {
	case d.jobs <- job:
	case <-ctx.Done():
	}
}

func (d *Dispatcher) worker() {
	for job := range d.jobs {
		job()
	}
}
