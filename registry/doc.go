// Package registry holds the bot handles built at startup and resolves them
// by token, configured id or username.
//
// The registry is append-only: handles are added during startup and never
// replaced or removed. The first handle added is the default. Every
// successful lookup records the handle's token in the used-token set, which
// the polling-mode startup report reads.
package registry
