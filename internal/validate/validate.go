// Package validate checks credentials and request parameters before they
// reach the network.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/prilive-com/tgbots/tg"
)

// Newf creates a validation error with a formatted message.
func Newf(field, format string, args ...any) *tg.ValidationError {
	return tg.NewValidationError(field, fmt.Sprintf(format, args...))
}

// Token validates a bot token format.
// Format: {bot_id}:{secret} where bot_id is numeric.
func Token(token string) error {
	if token == "" {
		return tg.NewValidationError("token", "cannot be empty")
	}

	botID, secret, ok := strings.Cut(token, ":")
	if !ok {
		return tg.NewValidationError("token", "invalid format, expected {bot_id}:{secret}")
	}
	if botID == "" {
		return tg.NewValidationError("token", "bot_id cannot be empty")
	}
	for _, c := range botID {
		if c < '0' || c > '9' {
			return tg.NewValidationError("token", "bot_id must be numeric")
		}
	}
	if secret == "" {
		return tg.NewValidationError("token", "secret cannot be empty")
	}
	if strings.ContainsAny(secret, "/ ?#") {
		return tg.NewValidationError("token", "secret contains invalid characters")
	}

	return nil
}

// ChatID validates a chat identifier.
// Valid: int64 (numeric ID) or string starting with @.
func ChatID(chatID tg.ChatID) error {
	switch v := chatID.(type) {
	case nil:
		return tg.NewValidationError("chat_id", "cannot be nil")
	case int64:
		if v == 0 {
			return tg.NewValidationError("chat_id", "cannot be zero")
		}
	case int:
		if v == 0 {
			return tg.NewValidationError("chat_id", "cannot be zero")
		}
	case string:
		if !strings.HasPrefix(v, "@") || len(v) < 2 {
			return tg.NewValidationError("chat_id", "string chat_id must start with @")
		}
	default:
		return Newf("chat_id", "unsupported type %T", chatID)
	}
	return nil
}

// Text validates message text length in characters.
func Text(text string, maxLen int) error {
	if text == "" {
		return tg.NewValidationError("text", "cannot be empty")
	}
	if n := utf8.RuneCountInString(text); n > maxLen {
		return Newf("text", "too long (%d > %d characters)", n, maxLen)
	}
	return nil
}

// WebhookSite validates the public base URL that webhook paths hang off.
func WebhookSite(site string) error {
	if strings.Trim(site, "/") == "" {
		return tg.NewValidationError("webhook_site", "cannot be empty")
	}
	u, err := url.Parse(site)
	if err != nil {
		return Newf("webhook_site", "invalid URL: %v", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return tg.NewValidationError("webhook_site", "must start with https:// or http://")
	}
	if u.Host == "" {
		return tg.NewValidationError("webhook_site", "missing host")
	}
	return nil
}
