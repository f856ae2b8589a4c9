package registry

import (
	"fmt"

	"github.com/prilive-com/tgbots/botapi"
	"github.com/prilive-com/tgbots/dispatch"
	"github.com/prilive-com/tgbots/tg"
	"github.com/prilive-com/tgbots/updater"
)

// Handle is one bot and the objects built around it.
type Handle struct {
	Token tg.SecretToken

	// ID is the optional identifier from configuration. It is not unique.
	ID string

	Bot        *botapi.Bot
	Dispatcher *dispatch.Dispatcher

	// Updater is set in polling mode unless setup is disabled.
	Updater *updater.Updater
}

// Username returns the provider-reported username, or "".
func (h *Handle) Username() string {
	if h.Bot == nil {
		return ""
	}
	return h.Bot.Username()
}

// Name identifies the handle in logs: the username when known, else the
// configured id, else the token fingerprint.
func (h *Handle) Name() string {
	if u := h.Username(); u != "" {
		return u
	}
	if h.ID != "" {
		return h.ID
	}
	return h.Token.Fingerprint()
}

// Validate reports ErrIncompleteHandle when a required field is missing.
func (h *Handle) Validate(requireUpdater bool) error {
	switch {
	case h == nil:
		return fmt.Errorf("%w: nil handle", ErrIncompleteHandle)
	case h.Token.IsEmpty():
		return fmt.Errorf("%w: missing token", ErrIncompleteHandle)
	case h.Bot == nil:
		return fmt.Errorf("%w: %s has no bot", ErrIncompleteHandle, h.Token.Fingerprint())
	case h.Dispatcher == nil:
		return fmt.Errorf("%w: %s has no dispatcher", ErrIncompleteHandle, h.Token.Fingerprint())
	case requireUpdater && h.Updater == nil:
		return fmt.Errorf("%w: %s has no updater", ErrIncompleteHandle, h.Token.Fingerprint())
	}
	return nil
}

// Close stops the updater and dispatcher and closes the bot.
func (h *Handle) Close() error {
	if h.Updater != nil {
		h.Updater.Stop()
	}
	if h.Dispatcher != nil {
		h.Dispatcher.Stop()
	}
	if h.Bot != nil {
		return h.Bot.Close()
	}
	return nil
}
