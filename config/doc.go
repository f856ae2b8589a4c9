// Package config loads process and per-bot settings.
//
// Settings come from a YAML file, then TGBOTS_* environment variables, then
// defaults. A bot token written as keyring:<account> is read from the OS
// keychain (service "tgbots").
package config
