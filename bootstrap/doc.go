// Package bootstrap builds every configured bot at startup and fills the
// registry.
//
// The Factory turns one config.BotSettings into a registry.Handle: it builds
// the bot connection, its dispatcher and, in polling mode, its updater, and
// registers or clears the webhook on the provider. The Orchestrator runs the
// Factory for each bot in configuration order, restarts the whole sequence
// after provider rate limiting, runs the registered modules, and reports
// which bots still need their polling loop started.
package bootstrap
