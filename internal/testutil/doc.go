// Package testutil holds test doubles shared by the tgbots packages.
//
// MockTelegramServer answers Bot API calls for several tokens on one
// httptest server. TokenA, TokenB and TokenC are registered by
// NewMockServerWithBots with default getMe, webhook, getUpdates and
// sendMessage replies; On overrides a single token and method:
//
//	server := testutil.NewMockServerWithBots(t)
//	server.On(testutil.TokenB, "getMe", func(w http.ResponseWriter, r *http.Request) {
//		testutil.ReplyRateLimit(w, 2)
//	})
//
// Every request is kept as a Capture so tests can inspect what a bot sent.
// FakeSleeper replaces the real sleeper in restart and backoff paths.
package testutil
