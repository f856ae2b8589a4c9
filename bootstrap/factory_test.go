package bootstrap_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/tgbots/bootstrap"
	"github.com/prilive-com/tgbots/config"
	"github.com/prilive-com/tgbots/internal/testutil"
	"github.com/prilive-com/tgbots/tg"
	"github.com/prilive-com/tgbots/updater"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func settingsFor(server *testutil.MockTelegramServer, mode config.Mode, tokens ...string) config.Settings {
	s := config.DefaultSettings()
	s.Mode = mode
	s.WebhookSite = "https://bots.example.com"
	s.WebhookPrefix = "/hooks/"
	s.BaseURL = server.BaseURL()
	for _, tok := range tokens {
		s.Bots = append(s.Bots, config.BotSettings{Token: tok})
	}
	s.ApplyDefaults()
	return s
}

func TestWebhookURL(t *testing.T) {
	token := tg.SecretToken(testutil.TokenA)
	tests := []struct {
		site, prefix, want string
	}{
		{"https://a.example", "/", "https://a.example/" + testutil.TokenA + "/"},
		{"https://a.example/", "", "https://a.example/" + testutil.TokenA + "/"},
		{"https://a.example", "/hooks/", "https://a.example/hooks/" + testutil.TokenA + "/"},
		{"https://a.example//", "tg/in", "https://a.example/tg/in/" + testutil.TokenA + "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bootstrap.WebhookURL(tt.site, tt.prefix, token), "site=%q prefix=%q", tt.site, tt.prefix)
	}
}

func TestFactory_BuildWebhook(t *testing.T) {
	server := testutil.NewMockServerWithBots(t)
	s := settingsFor(server, config.ModeWebhook, testutil.TokenA)
	s.Bots[0].AllowedUpdates = []string{"message"}

	f := bootstrap.NewFactory(s, bootstrap.WithFactoryLogger(quiet))
	h, err := f.Build(context.Background(), s.Bots[0])
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	assert.Equal(t, testutil.UsernameA, h.Username())
	assert.Nil(t, h.Updater)
	assert.NotNil(t, h.Dispatcher)
	assert.Equal(t, 0, h.Dispatcher.Options().Workers)

	want := "https://bots.example.com/hooks/" + testutil.TokenA + "/"
	assert.Equal(t, want, server.WebhookURL(testutil.TokenA))

	calls := server.CapturesFor("setWebhook")
	require.Len(t, calls, 1)
	calls[0].AssertJSONField(t, "max_connections", float64(config.DefaultWebhookMaxConnections))
	calls[0].AssertJSONField(t, "allowed_updates", []any{"message"})

	require.Len(t, server.CapturesFor("getWebhookInfo"), 1)
	require.NotNil(t, h.Bot.WebhookInfo())
	assert.Equal(t, want, h.Bot.WebhookInfo().URL)
}

func TestFactory_BuildPolling(t *testing.T) {
	server := testutil.NewMockServerWithBots(t)
	s := settingsFor(server, config.ModePolling, testutil.TokenB)

	h, err := bootstrap.NewFactory(s, bootstrap.WithFactoryLogger(quiet)).Build(context.Background(), s.Bots[0])
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	require.NotNil(t, h.Updater)
	assert.False(t, h.Updater.Running())
	assert.Len(t, server.CapturesFor("deleteWebhook"), 1)
	assert.Empty(t, server.CapturesFor("setWebhook"))
}

func TestFactory_UpdaterConfig(t *testing.T) {
	server := testutil.NewMockServerWithBots(t)
	s := settingsFor(server, config.ModePolling, testutil.TokenB)
	s.Bots[0].AllowedUpdates = []string{"message"}

	cfg := updater.DefaultConfig()
	cfg.Limit = 3
	cfg.Timeout = 1
	cfg.AllowedUpdates = []string{"callback_query"}

	f := bootstrap.NewFactory(s, bootstrap.WithFactoryLogger(quiet), bootstrap.WithFactoryUpdaterConfig(cfg))
	h, err := f.Build(context.Background(), s.Bots[0])
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })

	require.NoError(t, h.Updater.Start(context.Background()))
	require.Eventually(t, func() bool {
		return len(server.CapturesFor("getUpdates")) > 0
	}, 2*time.Second, 10*time.Millisecond)
	h.Updater.Stop()

	first := server.CapturesFor("getUpdates")[0]
	first.AssertJSONField(t, "limit", float64(3))
	first.AssertJSONField(t, "timeout", float64(1))
	first.AssertJSONField(t, "allowed_updates", []any{"message"})
}

func TestFactory_SetupDisabled(t *testing.T) {
	for _, mode := range []config.Mode{config.ModeWebhook, config.ModePolling} {
		t.Run(string(mode), func(t *testing.T) {
			server := testutil.NewMockServerWithBots(t)
			s := settingsFor(server, mode, testutil.TokenA)
			s.DisableSetup = true

			h, err := bootstrap.NewFactory(s, bootstrap.WithFactoryLogger(quiet)).Build(context.Background(), s.Bots[0])
			require.NoError(t, err)
			t.Cleanup(func() { h.Close() })

			assert.Nil(t, h.Updater)
			assert.Equal(t, "", h.Username())
			assert.Zero(t, server.CaptureCount())
		})
	}
}

func TestFactory_ContextOption(t *testing.T) {
	server := testutil.NewMockServerWithBots(t)
	s := settingsFor(server, config.ModeWebhook, testutil.TokenA)
	s.Bots[0].Context = true

	h, err := bootstrap.NewFactory(s, bootstrap.WithFactoryLogger(quiet)).Build(context.Background(), s.Bots[0])
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	assert.True(t, h.Dispatcher.Options().UseContext)
}

func TestFactory_QueueEnabled(t *testing.T) {
	server := testutil.NewMockServerWithBots(t)
	s := settingsFor(server, config.ModeWebhook, testutil.TokenA)
	s.Bots[0].MessageQueue.Enabled = true

	h, err := bootstrap.NewFactory(s, bootstrap.WithFactoryLogger(quiet)).Build(context.Background(), s.Bots[0])
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	assert.True(t, h.Bot.Queued())
}

func TestFactory_ErrorKinds(t *testing.T) {
	tests := []struct {
		name  string
		token string
		reply http.HandlerFunc
		kind  bootstrap.Kind
	}{
		{
			name:  "malformed token",
			token: "alpha:hunter2-secret",
			kind:  bootstrap.KindInvalidCredential,
		},
		{
			name:  "unauthorized",
			token: testutil.TokenA,
			reply: func(w http.ResponseWriter, r *http.Request) { testutil.ReplyUnauthorized(w) },
			kind:  bootstrap.KindInvalidCredential,
		},
		{
			name:  "rate limited",
			token: testutil.TokenA,
			reply: func(w http.ResponseWriter, r *http.Request) { testutil.ReplyRateLimit(w, 7) },
			kind:  bootstrap.KindRateLimited,
		},
		{
			name:  "server error",
			token: testutil.TokenA,
			reply: func(w http.ResponseWriter, r *http.Request) {
				testutil.ReplyServerError(w, 500, "Internal Server Error")
			},
			kind: bootstrap.KindProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewMockServerWithBots(t)
			if tt.reply != nil {
				server.On(tt.token, "getMe", tt.reply)
			}
			s := settingsFor(server, config.ModeWebhook, tt.token)

			h, err := bootstrap.NewFactory(s, bootstrap.WithFactoryLogger(quiet)).Build(context.Background(), s.Bots[0])
			require.Error(t, err)
			assert.Nil(t, h)

			var be *bootstrap.BuildError
			require.True(t, errors.As(err, &be))
			assert.Equal(t, tt.kind, be.Kind)
			_, secret, _ := strings.Cut(tt.token, ":")
			assert.NotContains(t, err.Error(), secret)
			if tt.reply == nil {
				assert.Zero(t, server.CaptureCount(), "format check fails before any request")
			}
			if tt.kind == bootstrap.KindRateLimited {
				assert.Equal(t, 7*time.Second, be.RetryAfter)
			}
		})
	}
}

func TestFactory_ProxyConfigError(t *testing.T) {
	server := testutil.NewMockServerWithBots(t)
	s := settingsFor(server, config.ModeWebhook, testutil.TokenA)
	s.Bots[0].Proxy = &config.ProxySettings{URL: "://bad proxy"}

	_, err := bootstrap.NewFactory(s, bootstrap.WithFactoryLogger(quiet)).Build(context.Background(), s.Bots[0])
	var be *bootstrap.BuildError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, bootstrap.KindConfig, be.Kind)
	assert.Zero(t, server.CaptureCount())
}
