package tg

import (
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

// SecretToken wraps a bot token to prevent accidental logging.
// Implements fmt.Stringer, fmt.GoStringer, slog.LogValuer, and encoding.TextMarshaler.
type SecretToken string

// Value returns the actual token value.
// Only use this when talking to the Bot API or keying the registry.
func (s SecretToken) Value() string { return string(s) }

// String returns a redacted placeholder (fmt.Stringer).
func (s SecretToken) String() string { return redacted }

// GoString returns redacted for %#v (fmt.GoStringer).
func (s SecretToken) GoString() string { return `tg.SecretToken("[REDACTED]")` }

// LogValue returns a redacted value for slog (slog.LogValuer).
func (s SecretToken) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// MarshalText returns redacted bytes (encoding.TextMarshaler).
func (s SecretToken) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

// IsEmpty returns true if the token is empty.
func (s SecretToken) IsEmpty() bool {
	return s == ""
}

// BotID returns the numeric part in front of the colon, or "" when the
// token does not have the {bot_id}:{secret} shape.
func (s SecretToken) BotID() string {
	id, _, ok := strings.Cut(string(s), ":")
	if !ok {
		return ""
	}
	return id
}

// Fingerprint identifies the token in logs without revealing the secret part.
func (s SecretToken) Fingerprint() string {
	if id := s.BotID(); id != "" {
		return id + ":***"
	}
	return redacted
}
