package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/prilive-com/tgbots/config"
	"github.com/prilive-com/tgbots/tg"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tgbots.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseMode(t *testing.T) {
	m, err := config.ParseMode("polling")
	require.NoError(t, err)
	assert.Equal(t, config.ModePolling, m)

	m, err = config.ParseMode(" Webhook ")
	require.NoError(t, err)
	assert.Equal(t, config.ModeWebhook, m)

	_, err = config.ParseMode("push")
	assert.ErrorIs(t, err, tg.ErrInvalidConfig)
}

func TestLoad_FileWithDefaults(t *testing.T) {
	path := writeFile(t, `
mode: polling
webhook_site: https://example.com
bots:
  - token: "111:AAA"
    id: main
    context: true
    allowed_updates: [message, callback_query]
    timeout: 15s
    message_queue:
      enabled: true
      all_burst_limit: 10
  - token: "222:BBB"
    proxy:
      url: socks5://127.0.0.1:1080
      username: user
      password: pass
`)

	s, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.ModePolling, s.Mode)
	assert.Equal(t, "/", s.WebhookPrefix)
	assert.Equal(t, config.DefaultMaxRestarts, s.MaxRestarts)
	require.Len(t, s.Bots, 2)

	a := s.Bots[0]
	assert.Equal(t, "main", a.ID)
	assert.True(t, a.Context)
	assert.Equal(t, []string{"message", "callback_query"}, a.AllowedUpdates)
	assert.Equal(t, 15*time.Second, a.Timeout)
	assert.True(t, a.MessageQueue.Enabled)
	assert.Equal(t, 10, a.MessageQueue.AllBurstLimit)
	assert.Equal(t, 1024, a.MessageQueue.AllTimeLimitMS)
	assert.Equal(t, 8, a.MessageQueue.PoolSize)
	assert.Equal(t, config.DefaultWebhookMaxConnections, a.WebhookMaxConnections)

	b := s.Bots[1]
	require.NotNil(t, b.Proxy)
	assert.Equal(t, "socks5://127.0.0.1:1080", b.Proxy.URL)
	assert.False(t, b.MessageQueue.Enabled)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeFile(t, "mode: webhook\nbogus: 1\n")
	_, err := config.Load(path)
	assert.ErrorIs(t, err, tg.ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TGBOTS_MODE", "POLLING")
	t.Setenv("TGBOTS_WEBHOOK_SITE", "https://env.example.com")
	t.Setenv("TGBOTS_DISABLE_SETUP", "true")
	t.Setenv("TGBOTS_MAX_RESTARTS", "2")
	t.Setenv("TGBOTS_BOT_TOKEN", "333:CCC")
	t.Setenv("TGBOTS_BOT_ID", "solo")

	s, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.ModePolling, s.Mode)
	assert.Equal(t, "https://env.example.com", s.WebhookSite)
	assert.True(t, s.DisableSetup)
	assert.Equal(t, 2, s.MaxRestarts)
	require.Len(t, s.Bots, 1)
	assert.Equal(t, "333:CCC", s.Bots[0].Token)
	assert.Equal(t, "solo", s.Bots[0].ID)
}

func TestLoad_EnvTokenDoesNotOverrideFileBots(t *testing.T) {
	t.Setenv("TGBOTS_BOT_TOKEN", "333:CCC")
	path := writeFile(t, "bots:\n  - token: \"111:AAA\"\n")

	s, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, s.Bots, 1)
	assert.Equal(t, "111:AAA", s.Bots[0].Token)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("TGBOTS_STRICT_INIT", "maybe")
	_, err := config.Load("")
	assert.ErrorIs(t, err, tg.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Settings)
	}{
		{"bad mode", func(s *config.Settings) { s.Mode = "PUSH" }},
		{"empty token", func(s *config.Settings) { s.Bots = []config.BotSettings{{}} }},
		{"duplicate token", func(s *config.Settings) {
			s.Bots = []config.BotSettings{{Token: "1:a"}, {Token: "2:b"}, {Token: "1:a"}}
		}},
		{"proxy without url", func(s *config.Settings) {
			s.Bots = []config.BotSettings{{Token: "1:a", Proxy: &config.ProxySettings{}}}
		}},
		{"negative queue", func(s *config.Settings) {
			s.Bots = []config.BotSettings{{Token: "1:a", MessageQueue: config.QueueSettings{PoolSize: -1}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := config.DefaultSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), tg.ErrInvalidConfig)
		})
	}

	ok := config.DefaultSettings()
	assert.NoError(t, ok.Validate(), "no bots is valid")
}

func TestApplyDefaults_ZeroValue(t *testing.T) {
	s := config.Settings{Mode: "polling", Bots: []config.BotSettings{{Token: "1:a"}}}
	s.ApplyDefaults()

	assert.Equal(t, config.ModePolling, s.Mode)
	assert.Equal(t, config.DefaultMaxRestarts, s.MaxRestarts)
	assert.Equal(t, config.DefaultWebhookMaxConnections, s.Bots[0].WebhookMaxConnections)

	unknown := config.Settings{Mode: "push"}
	unknown.ApplyDefaults()
	assert.ErrorIs(t, unknown.Validate(), tg.ErrInvalidConfig)
}

func TestRestartLimit(t *testing.T) {
	tests := []struct {
		configured int
		want       int
	}{
		{0, config.DefaultMaxRestarts},
		{2, 2},
		{config.NoRestarts, 0},
		{-7, 0},
	}
	for _, tt := range tests {
		s := config.Settings{MaxRestarts: tt.configured}
		assert.Equal(t, tt.want, s.RestartLimit(), "max_restarts=%d", tt.configured)
	}
}

func TestValidate_DuplicateDoesNotLeakToken(t *testing.T) {
	s := config.DefaultSettings()
	s.Bots = []config.BotSettings{{Token: "1:supersecret"}, {Token: "1:supersecret"}}
	err := s.Validate()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "supersecret")
}

func TestResolveToken_Keyring(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, config.StoreToken("alpha", " 111:AAA\n"))

	token, err := config.ResolveToken("keyring:alpha")
	require.NoError(t, err)
	assert.Equal(t, "111:AAA", token)

	token, err = config.ResolveToken("222:BBB")
	require.NoError(t, err)
	assert.Equal(t, "222:BBB", token)

	_, err = config.ResolveToken("keyring:missing")
	assert.ErrorIs(t, err, tg.ErrInvalidConfig)

	_, err = config.ResolveToken("keyring:")
	assert.ErrorIs(t, err, tg.ErrInvalidConfig)
}

func TestLoad_KeyringTokens(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, config.StoreToken("a", "111:AAA"))
	require.NoError(t, config.StoreToken("b", "111:AAA"))

	path := writeFile(t, "bots:\n  - token: keyring:a\n  - token: keyring:b\n")
	_, err := config.Load(path)
	assert.ErrorIs(t, err, tg.ErrInvalidConfig, "duplicates are found after keychain lookup")
}
