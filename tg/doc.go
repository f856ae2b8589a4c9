// Package tg holds the Bot API types shared by every tgbots package.
//
// Only the types the registry, the bot connection, the dispatcher and the
// updater exchange are defined here.
//
//	token := tg.SecretToken("123456789:AA...")
//	logger.Info("bot ready", "bot", token.Fingerprint())
//
// Errors returned by the Bot API are reported as *APIError and can be matched
// against the sentinels in this package with errors.Is.
package tg
