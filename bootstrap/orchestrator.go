package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/prilive-com/tgbots/config"
	"github.com/prilive-com/tgbots/internal/resilience"
	"github.com/prilive-com/tgbots/internal/validate"
	"github.com/prilive-com/tgbots/registry"
	"github.com/prilive-com/tgbots/updater"
)

// Orchestrator runs the startup sequence once per process.
type Orchestrator struct {
	settings   config.Settings
	registry   *registry.Registry
	modules    []Module
	logger     *slog.Logger
	sleeper    resilience.Sleeper
	httpClient *http.Client
	updaterCfg *updater.Config

	once   sync.Once
	result error
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithModules appends modules, loaded in the order given.
func WithModules(modules ...Module) Option {
	return func(o *Orchestrator) {
		o.modules = append(o.modules, modules...)
	}
}

// WithSleeper replaces the sleeper used to wait out provider rate limits.
func WithSleeper(s resilience.Sleeper) Option {
	return func(o *Orchestrator) {
		o.sleeper = s
	}
}

// WithHTTPClient makes every bot share client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Orchestrator) {
		o.httpClient = client
	}
}

// WithUpdaterConfig sets the polling updater configuration.
func WithUpdaterConfig(cfg updater.Config) Option {
	return func(o *Orchestrator) {
		o.updaterCfg = &cfg
	}
}

// NewOrchestrator creates an Orchestrator that fills reg from settings.
func NewOrchestrator(settings config.Settings, reg *registry.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		settings: settings,
		registry: reg,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.sleeper == nil {
		o.sleeper = resilience.RealSleeper{}
	}
	return o
}

// Registry returns the registry being filled.
func (o *Orchestrator) Registry() *registry.Registry { return o.registry }

// Run performs startup. Later calls do nothing and return the first
// call's result.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.once.Do(func() {
		o.result = o.run(ctx)
	})
	return o.result
}

func (o *Orchestrator) run(ctx context.Context) error {
	s := o.settings
	logger := o.logger.With("run_id", uuid.NewString())
	logger.Info("starting bots", "mode", string(s.Mode), "bots", len(s.Bots))

	if err := s.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	s.Mode, _ = config.ParseMode(string(s.Mode))

	factoryOpts := []FactoryOption{WithFactoryLogger(logger)}
	if o.httpClient != nil {
		factoryOpts = append(factoryOpts, WithFactoryHTTPClient(o.httpClient))
	}
	if o.updaterCfg != nil {
		factoryOpts = append(factoryOpts, WithFactoryUpdaterConfig(*o.updaterCfg))
	}

	if s.Mode == config.ModeWebhook {
		if strings.Trim(s.WebhookSite, "/") == "" {
			logger.Warn("webhook site is not set, no bot was started")
			return ErrMissingWebhookSite
		}
		if err := validate.WebhookSite(s.WebhookSite); err != nil {
			logger.Error("invalid webhook site", "error", err)
			return err
		}
		if cert := loadCertificate(logger, s.WebhookCertificate); cert != nil {
			factoryOpts = append(factoryOpts, WithCertificate(cert))
		}
	}

	factory := NewFactory(s, factoryOpts...)

	limit := s.RestartLimit()
	for restarts := 0; ; restarts++ {
		staged, err := o.attempt(ctx, logger, factory)

		var be *BuildError
		if errors.As(err, &be) && be.Kind == KindRateLimited {
			discard(staged)
			if restarts >= limit {
				logger.Error("provider rate limiting persists, giving up",
					"restarts", restarts, "max_restarts", limit)
				return fmt.Errorf("%w (%d): %w", ErrTooManyRestarts, restarts, err)
			}
			logger.Warn("rate limited by provider, restarting startup",
				"bot", be.Token.Fingerprint(),
				"retry_after", be.RetryAfter,
				"restart", restarts+1,
			)
			if serr := o.sleeper.Sleep(ctx, be.RetryAfter); serr != nil {
				return serr
			}
			continue
		}

		if cerr := o.commit(staged); cerr != nil {
			logger.Error("registering bots failed", "error", cerr)
			return cerr
		}
		if err != nil {
			logger.Error("startup aborted", "error", err, "registered", o.registry.Len())
			return err
		}
		break
	}

	if all := o.registry.All(); len(all) > 0 {
		logger.Info("default bot", "bot", all[0].Name())
	}

	if err := o.loadModules(ctx, logger); err != nil {
		return err
	}

	if s.Mode == config.ModePolling {
		o.reportPolling(logger)
	}
	return nil
}

// attempt builds every bot in configuration order. The returned handles
// are the ones built before any error.
func (o *Orchestrator) attempt(ctx context.Context, logger *slog.Logger, f *Factory) ([]*registry.Handle, error) {
	staged := make([]*registry.Handle, 0, len(o.settings.Bots))
	for _, bs := range o.settings.Bots {
		if err := ctx.Err(); err != nil {
			return staged, err
		}

		h, err := f.Build(ctx, bs)
		if err == nil {
			staged = append(staged, h)
			continue
		}

		var be *BuildError
		if errors.As(err, &be) && be.Kind == KindInvalidCredential {
			logger.Error("invalid token", "bot", be.Token.Fingerprint(), "error", err)
			if o.settings.ContinueOnInvalidToken {
				continue
			}
			return staged, err
		}
		if be != nil && be.Kind == KindRateLimited {
			return staged, err
		}
		logger.Error("bot setup failed", "error", err)
		return staged, err
	}
	return staged, nil
}

func (o *Orchestrator) commit(staged []*registry.Handle) error {
	for i, h := range staged {
		if err := o.registry.Add(h); err != nil {
			discard(staged[i:])
			return err
		}
		if h.Updater != nil {
			o.registry.MarkUsed(h.Token)
		}
	}
	return nil
}

func discard(handles []*registry.Handle) {
	for _, h := range handles {
		_ = h.Close()
	}
}

func (o *Orchestrator) loadModules(ctx context.Context, logger *slog.Logger) error {
	for _, m := range o.modules {
		if m.Init != nil {
			if err := m.Init(ctx, o.registry); err != nil {
				if o.settings.StrictInit {
					logger.Error("module failed", "module", m.Name, "error", err)
					return fmt.Errorf("%w: %s: %w", ErrModuleInit, m.Name, err)
				}
				logger.Error("module failed, continuing", "module", m.Name, "error", err)
				continue
			}
		}
		logger.Info("module loaded", "module", m.Name)
	}
	return nil
}

func (o *Orchestrator) reportPolling(logger *slog.Logger) {
	used := o.registry.UsedHandles()
	if len(used) == 0 {
		return
	}
	logger.Info(fmt.Sprintf("start polling manually for %d bot(s), run:", len(used)))
	for _, h := range used {
		logger.Info(PollingCommand(h))
	}
}

// PollingCommand returns the command line that starts polling for h. A
// bot with neither username nor configured id cannot be named without its
// token, so the line says so instead.
func PollingCommand(h *registry.Handle) string {
	if u := h.Username(); u != "" {
		return "tgbots polling --username=" + u
	}
	if h.ID != "" {
		return "tgbots polling --username=" + h.ID
	}
	return "bot " + h.Token.Fingerprint() + " has no username or id; set bots[].id to poll it by name"
}

func loadCertificate(logger *slog.Logger, path string) *Certificate {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("webhook certificate not readable, registering without it", "path", path, "error", err)
		return nil
	}
	logger.Info("webhook certificate loaded", "path", path)
	return &Certificate{Name: filepath.Base(path), Data: data}
}
