package tgbots

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prilive-com/tgbots/bootstrap"
	"github.com/prilive-com/tgbots/config"
	"github.com/prilive-com/tgbots/internal/resilience"
	"github.com/prilive-com/tgbots/registry"
	"github.com/prilive-com/tgbots/updater"
)

// Hub owns every bot of the process.
type Hub struct {
	settings     config.Settings
	logger       *slog.Logger
	registry     *registry.Registry
	orchestrator *bootstrap.Orchestrator
	closeOnce    sync.Once
	closeErr     error
}

type hubConfig struct {
	logger     *slog.Logger
	modules    []bootstrap.Module
	sleeper    resilience.Sleeper
	baseURL    string
	httpClient *http.Client
	updater    *updater.Config
}

// Option configures the Hub.
type Option func(*hubConfig)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *hubConfig) {
		c.logger = logger
	}
}

// WithModules registers modules loaded after the bots are connected.
func WithModules(modules ...bootstrap.Module) Option {
	return func(c *hubConfig) {
		c.modules = append(c.modules, modules...)
	}
}

// WithSleeper replaces the wall-clock wait used after provider rate limiting.
func WithSleeper(s resilience.Sleeper) Option {
	return func(c *hubConfig) {
		c.sleeper = s
	}
}

// WithBaseURL points every bot at another Bot API server.
func WithBaseURL(url string) Option {
	return func(c *hubConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient makes every bot share client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *hubConfig) {
		c.httpClient = client
	}
}

// WithUpdaterConfig sets the polling loop configuration.
func WithUpdaterConfig(cfg updater.Config) Option {
	return func(c *hubConfig) {
		c.updater = &cfg
	}
}

// New creates a Hub. Settings get defaults applied and are validated; no
// request is made until Start.
func New(settings config.Settings, opts ...Option) (*Hub, error) {
	var cfg hubConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.baseURL != "" {
		settings.BaseURL = cfg.baseURL
	}
	settings.Bots = append([]config.BotSettings(nil), settings.Bots...)
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.Mode, _ = config.ParseMode(string(settings.Mode))

	reg := registry.New()
	orchOpts := []bootstrap.Option{
		bootstrap.WithLogger(logger),
		bootstrap.WithModules(cfg.modules...),
	}
	if cfg.sleeper != nil {
		orchOpts = append(orchOpts, bootstrap.WithSleeper(cfg.sleeper))
	}
	if cfg.httpClient != nil {
		orchOpts = append(orchOpts, bootstrap.WithHTTPClient(cfg.httpClient))
	}
	if cfg.updater != nil {
		orchOpts = append(orchOpts, bootstrap.WithUpdaterConfig(*cfg.updater))
	}

	return &Hub{
		settings:     settings,
		logger:       logger,
		registry:     reg,
		orchestrator: bootstrap.NewOrchestrator(settings, reg, orchOpts...),
	}, nil
}

// Start connects every bot. Only the first call does any work; later calls
// return its result.
func (h *Hub) Start(ctx context.Context) error {
	return h.orchestrator.Run(ctx)
}

// Registry returns the bot registry. It is empty before Start.
func (h *Hub) Registry() *registry.Registry {
	return h.registry
}

// Mode returns the delivery mode.
func (h *Hub) Mode() config.Mode {
	return h.settings.Mode
}

// Settings returns the effective settings.
func (h *Hub) Settings() config.Settings {
	return h.settings
}

// Close stops every updater and dispatcher and closes every bot.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		h.closeErr = h.registry.Close()
	})
	return h.closeErr
}
