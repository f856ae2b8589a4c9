package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prilive-com/tgbots/botapi"
	"github.com/prilive-com/tgbots/config"
	"github.com/prilive-com/tgbots/dispatch"
	"github.com/prilive-com/tgbots/internal/scrub"
	"github.com/prilive-com/tgbots/registry"
	"github.com/prilive-com/tgbots/tg"
	"github.com/prilive-com/tgbots/updater"
)

// Certificate is a webhook certificate read from disk.
type Certificate struct {
	Name string
	Data []byte
}

// Factory builds one registry.Handle per bot.
type Factory struct {
	mode          config.Mode
	site          string
	prefix        string
	disableSetup  bool
	certificate   *Certificate
	baseURL       string
	httpClient    *http.Client
	logger        *slog.Logger
	updaterConfig updater.Config
}

// FactoryOption configures the Factory.
type FactoryOption func(*Factory)

// WithFactoryLogger sets a custom logger.
func WithFactoryLogger(logger *slog.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithCertificate attaches a certificate to every webhook registration.
func WithCertificate(c *Certificate) FactoryOption {
	return func(f *Factory) {
		f.certificate = c
	}
}

// WithFactoryHTTPClient makes every bot share client instead of building
// its own transport.
func WithFactoryHTTPClient(client *http.Client) FactoryOption {
	return func(f *Factory) {
		f.httpClient = client
	}
}

// WithFactoryUpdaterConfig sets the base configuration of polling-mode updaters.
// Per-bot allowed updates still apply.
func WithFactoryUpdaterConfig(cfg updater.Config) FactoryOption {
	return func(f *Factory) {
		f.updaterConfig = cfg
	}
}

// NewFactory creates a Factory for the process settings s.
func NewFactory(s config.Settings, opts ...FactoryOption) *Factory {
	f := &Factory{
		mode:          s.Mode,
		site:          s.WebhookSite,
		prefix:        s.WebhookPrefix,
		disableSetup:  s.DisableSetup,
		baseURL:       s.BaseURL,
		updaterConfig: updater.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// WebhookURL joins site, prefix and token into the URL the provider posts
// updates to. Surrounding slashes of site and prefix are ignored.
func WebhookURL(site, prefix string, token tg.SecretToken) string {
	parts := []string{strings.TrimRight(site, "/")}
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	parts = append(parts, token.Value())
	return strings.Join(parts, "/") + "/"
}

// Build creates the handle for one bot. Failures are *BuildError. A handle
// is returned only when every part of it was built.
func (f *Factory) Build(ctx context.Context, bs config.BotSettings) (*registry.Handle, error) {
	token := tg.SecretToken(bs.Token)
	logger := f.logger.With("bot", token.Fingerprint())

	bot, err := botapi.NewFromConfig(f.botConfig(token, bs), f.botOptions(logger)...)
	if err != nil {
		return nil, classify(token, err)
	}

	h := &registry.Handle{
		Token: token,
		ID:    bs.ID,
		Bot:   bot,
		Dispatcher: dispatch.New(bot,
			dispatch.Options{Workers: 0, UseContext: bs.Context},
			dispatch.WithLogger(logger)),
	}

	if err := f.setup(ctx, logger, h, bs); err != nil {
		_ = h.Close()
		return nil, classify(token, err)
	}
	return h, nil
}

func (f *Factory) botConfig(token tg.SecretToken, bs config.BotSettings) botapi.Config {
	cfg := botapi.DefaultConfig()
	cfg.Token = token
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if bs.Timeout > 0 {
		cfg.RequestTimeout = bs.Timeout
	}
	if bs.Proxy != nil {
		cfg.Proxy = botapi.ProxyConfig{
			URL:      bs.Proxy.URL,
			Username: bs.Proxy.Username,
			Password: tg.SecretToken(bs.Proxy.Password),
		}
	}
	if q := bs.MessageQueue; q.Enabled {
		cfg.Queue = botapi.QueueConfig{
			Enabled:         true,
			AllBurstLimit:   q.AllBurstLimit,
			AllTimeLimit:    time.Duration(q.AllTimeLimitMS) * time.Millisecond,
			GroupBurstLimit: q.GroupBurstLimit,
			GroupTimeLimit:  time.Duration(q.GroupTimeLimitMS) * time.Millisecond,
			PoolSize:        q.PoolSize,
		}
	}
	return cfg
}

func (f *Factory) botOptions(logger *slog.Logger) []botapi.Option {
	opts := []botapi.Option{botapi.WithLogger(logger)}
	if f.httpClient != nil {
		opts = append(opts, botapi.WithHTTPClient(f.httpClient))
	}
	return opts
}

func (f *Factory) setup(ctx context.Context, logger *slog.Logger, h *registry.Handle, bs config.BotSettings) error {
	if f.disableSetup {
		if f.mode == config.ModeWebhook {
			logger.Info("webhook setup disabled, bot will not receive updates from here")
		}
		return nil
	}

	if _, err := h.Bot.GetMe(ctx); err != nil {
		return err
	}

	if f.mode == config.ModePolling {
		cfg := f.updaterConfig
		if len(bs.AllowedUpdates) > 0 {
			cfg.AllowedUpdates = bs.AllowedUpdates
		}
		h.Updater = updater.New(h.Bot, h.Dispatcher, cfg, updater.WithLogger(logger))
		return h.Bot.DeleteWebhook(ctx, false)
	}

	req := botapi.SetWebhookRequest{
		URL:            WebhookURL(f.site, f.prefix, h.Token),
		MaxConnections: bs.WebhookMaxConnections,
		AllowedUpdates: bs.AllowedUpdates,
	}
	if req.MaxConnections == 0 {
		req.MaxConnections = config.DefaultWebhookMaxConnections
	}
	if f.certificate != nil {
		req.Certificate = f.certificate.Data
		req.CertificateName = f.certificate.Name
	}
	if err := h.Bot.SetWebhook(ctx, req); err != nil {
		return err
	}

	info, err := h.Bot.GetWebhookInfo(ctx)
	if err != nil {
		return err
	}
	logger.Info("webhook registered",
		"username", h.Bot.Username(),
		"url", scrub.String(info.URL, h.Token),
		"max_connections", info.MaxConnections,
		"allowed_updates", info.EffectiveAllowedUpdates(),
		"pending_update_count", info.PendingUpdateCount,
	)
	return nil
}
