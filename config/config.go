package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prilive-com/tgbots/tg"
)

// Mode is the update delivery mode, fixed for the life of the process.
type Mode string

const (
	ModeWebhook Mode = "WEBHOOK"
	ModePolling Mode = "POLLING"
)

// ParseMode accepts WEBHOOK or POLLING in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModeWebhook, ModePolling:
		return m, nil
	}
	return "", tg.NewConfigError("mode", fmt.Sprintf("unknown mode %q (want WEBHOOK or POLLING)", s))
}

// Settings is the process-wide configuration.
type Settings struct {
	Mode               Mode   `yaml:"mode"`
	WebhookSite        string `yaml:"webhook_site"`
	WebhookPrefix      string `yaml:"webhook_prefix"`
	WebhookCertificate string `yaml:"webhook_certificate"`

	// DisableSetup skips webhook registration and updater construction.
	DisableSetup bool `yaml:"disable_setup"`

	// StrictInit makes a failing module abort startup.
	StrictInit bool `yaml:"strict_init"`

	// MaxRestarts bounds full restarts after provider rate limiting.
	// Zero means DefaultMaxRestarts; NoRestarts (or any negative value)
	// fails on the first rate limit.
	MaxRestarts int `yaml:"max_restarts"`

	// ContinueOnInvalidToken skips a rejected token instead of aborting.
	ContinueOnInvalidToken bool `yaml:"continue_on_invalid_token"`

	BaseURL string `yaml:"base_url"`

	Bots []BotSettings `yaml:"bots"`
}

// BotSettings configures one bot.
type BotSettings struct {
	// Token is the bot token, or keyring:<account>.
	Token string `yaml:"token"`
	ID    string `yaml:"id"`

	// Context gives the dispatcher persistent chat/user/bot data.
	Context bool `yaml:"context"`

	AllowedUpdates []string      `yaml:"allowed_updates"`
	Timeout        time.Duration `yaml:"timeout"`

	Proxy *ProxySettings `yaml:"proxy"`

	MessageQueue QueueSettings `yaml:"message_queue"`

	WebhookMaxConnections int `yaml:"webhook_max_connections"`
}

// ProxySettings routes one bot's traffic through a proxy.
type ProxySettings struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// QueueSettings configures the outbound message queue.
type QueueSettings struct {
	Enabled          bool `yaml:"enabled"`
	AllBurstLimit    int  `yaml:"all_burst_limit"`
	AllTimeLimitMS   int  `yaml:"all_time_limit_ms"`
	GroupBurstLimit  int  `yaml:"group_burst_limit"`
	GroupTimeLimitMS int  `yaml:"group_time_limit_ms"`
	PoolSize         int  `yaml:"pool_size"`
}

// Defaults.
const (
	DefaultWebhookPrefix         = "/"
	DefaultMaxRestarts           = 5
	NoRestarts                   = -1
	DefaultWebhookMaxConnections = 40
)

// DefaultSettings returns Settings with defaults and no bots.
func DefaultSettings() Settings {
	return Settings{
		Mode:          ModeWebhook,
		WebhookPrefix: DefaultWebhookPrefix,
		MaxRestarts:   DefaultMaxRestarts,
	}
}

// DefaultQueueSettings returns the queue defaults: 29 messages per 1024ms,
// 20 per minute per group, 8 pooled connections. The queue is off.
func DefaultQueueSettings() QueueSettings {
	return QueueSettings{
		AllBurstLimit:    29,
		AllTimeLimitMS:   1024,
		GroupBurstLimit:  20,
		GroupTimeLimitMS: 60000,
		PoolSize:         8,
	}
}

// Load reads path (optional), applies the environment and defaults,
// resolves keychain tokens and validates the result.
func Load(path string) (*Settings, error) {
	s := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &s); err != nil {
			return nil, err
		}
	}

	if err := s.ApplyEnv(); err != nil {
		return nil, err
	}
	s.ApplyDefaults()
	if err := s.ResolveTokens(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func decode(data []byte, s *Settings) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return tg.NewConfigError("file", err.Error())
	}
	return nil
}

// ApplyEnv overrides settings from TGBOTS_* variables.
func (s *Settings) ApplyEnv() error {
	if v := getEnv("TGBOTS_MODE", ""); v != "" {
		m, err := ParseMode(v)
		if err != nil {
			return err
		}
		s.Mode = m
	}
	if v := getEnv("TGBOTS_WEBHOOK_SITE", ""); v != "" {
		s.WebhookSite = v
	}
	if v := getEnv("TGBOTS_WEBHOOK_PREFIX", ""); v != "" {
		s.WebhookPrefix = v
	}
	if v := getEnv("TGBOTS_WEBHOOK_CERTIFICATE", ""); v != "" {
		s.WebhookCertificate = v
	}
	if v := getEnv("TGBOTS_BASE_URL", ""); v != "" {
		s.BaseURL = v
	}

	var err error
	if s.DisableSetup, err = envBool("TGBOTS_DISABLE_SETUP", s.DisableSetup); err != nil {
		return err
	}
	if s.StrictInit, err = envBool("TGBOTS_STRICT_INIT", s.StrictInit); err != nil {
		return err
	}
	if s.ContinueOnInvalidToken, err = envBool("TGBOTS_CONTINUE_ON_INVALID_TOKEN", s.ContinueOnInvalidToken); err != nil {
		return err
	}
	if v := getEnv("TGBOTS_MAX_RESTARTS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return tg.NewConfigError("max_restarts", "not an integer: "+v)
		}
		s.MaxRestarts = n
	}

	if token := getEnv("TGBOTS_BOT_TOKEN", ""); token != "" && len(s.Bots) == 0 {
		s.Bots = append(s.Bots, BotSettings{Token: token, ID: getEnv("TGBOTS_BOT_ID", "")})
	}
	return nil
}

// ApplyDefaults fills unset fields and normalises the mode. An unknown
// mode is left for Validate to report.
func (s *Settings) ApplyDefaults() {
	if s.Mode == "" {
		s.Mode = ModeWebhook
	}
	if m, err := ParseMode(string(s.Mode)); err == nil {
		s.Mode = m
	}
	if s.MaxRestarts == 0 {
		s.MaxRestarts = DefaultMaxRestarts
	}
	if s.WebhookPrefix == "" {
		s.WebhookPrefix = DefaultWebhookPrefix
	}
	def := DefaultQueueSettings()
	for i := range s.Bots {
		b := &s.Bots[i]
		if b.WebhookMaxConnections == 0 {
			b.WebhookMaxConnections = DefaultWebhookMaxConnections
		}
		q := &b.MessageQueue
		if q.AllBurstLimit == 0 {
			q.AllBurstLimit = def.AllBurstLimit
		}
		if q.AllTimeLimitMS == 0 {
			q.AllTimeLimitMS = def.AllTimeLimitMS
		}
		if q.GroupBurstLimit == 0 {
			q.GroupBurstLimit = def.GroupBurstLimit
		}
		if q.GroupTimeLimitMS == 0 {
			q.GroupTimeLimitMS = def.GroupTimeLimitMS
		}
		if q.PoolSize == 0 {
			q.PoolSize = def.PoolSize
		}
	}
}

// RestartLimit is the number of full restarts allowed after provider
// rate limiting.
func (s *Settings) RestartLimit() int {
	switch {
	case s.MaxRestarts == 0:
		return DefaultMaxRestarts
	case s.MaxRestarts < 0:
		return 0
	}
	return s.MaxRestarts
}

// Validate checks the settings. Webhook-site presence is checked at
// startup, where the failure is reported like any other startup error.
func (s *Settings) Validate() error {
	if _, err := ParseMode(string(s.Mode)); err != nil {
		return err
	}

	seen := make(map[string]int, len(s.Bots))
	for i, b := range s.Bots {
		key := fmt.Sprintf("bots[%d]", i)
		if b.Token == "" {
			return tg.NewConfigError(key+".token", "required")
		}
		if j, dup := seen[b.Token]; dup {
			return tg.NewConfigError(key+".token", fmt.Sprintf("duplicate of bots[%d] (%s)", j, tg.SecretToken(b.Token).Fingerprint()))
		}
		seen[b.Token] = i

		if b.Timeout < 0 {
			return tg.NewConfigError(key+".timeout", "must be >= 0")
		}
		if b.WebhookMaxConnections < 0 || b.WebhookMaxConnections > 100 {
			return tg.NewConfigError(key+".webhook_max_connections", "must be between 0 and 100")
		}
		q := b.MessageQueue
		if q.AllBurstLimit < 0 || q.AllTimeLimitMS < 0 || q.GroupBurstLimit < 0 || q.GroupTimeLimitMS < 0 || q.PoolSize < 0 {
			return tg.NewConfigError(key+".message_queue", "limits must be >= 0")
		}
		if b.Proxy != nil && b.Proxy.URL == "" {
			return tg.NewConfigError(key+".proxy.url", "required when proxy is set")
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func envBool(key string, current bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return current, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return current, tg.NewConfigError(strings.ToLower(strings.TrimPrefix(key, "TGBOTS_")), "not a boolean: "+v)
	}
	return b, nil
}
