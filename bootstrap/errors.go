package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/prilive-com/tgbots/tg"
)

var (
	// ErrTooManyRestarts is returned when provider rate limiting persists
	// beyond Settings.MaxRestarts.
	ErrTooManyRestarts = errors.New("tgbots: too many startup restarts")

	// ErrMissingWebhookSite is returned in webhook mode without a site URL.
	ErrMissingWebhookSite = tg.NewConfigError("webhook_site", "required in WEBHOOK mode")

	// ErrModuleInit wraps a module failure under strict initialization.
	ErrModuleInit = errors.New("tgbots: module init failed")
)

// Kind classifies a bot build failure.
type Kind int

const (
	KindProvider Kind = iota
	KindInvalidCredential
	KindRateLimited
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindInvalidCredential:
		return "invalid_credential"
	case KindRateLimited:
		return "rate_limited"
	case KindConfig:
		return "config"
	default:
		return "provider"
	}
}

// BuildError is returned by Factory.Build.
type BuildError struct {
	Token      tg.SecretToken
	Kind       Kind
	RetryAfter time.Duration // set for KindRateLimited
	Err        error
}

func (e *BuildError) Error() string {
	if e.Kind == KindRateLimited {
		return fmt.Sprintf("tgbots: bot %s: %s (retry after %s): %v", e.Token.Fingerprint(), e.Kind, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("tgbots: bot %s: %s: %v", e.Token.Fingerprint(), e.Kind, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

func classify(token tg.SecretToken, err error) *BuildError {
	be := &BuildError{Token: token, Kind: KindProvider, Err: err}
	switch {
	case tg.IsInvalidToken(err):
		be.Kind = KindInvalidCredential
	case tg.RetryAfter(err) > 0:
		be.Kind = KindRateLimited
		be.RetryAfter = tg.RetryAfter(err)
	case errors.Is(err, tg.ErrInvalidConfig):
		be.Kind = KindConfig
	}
	return be
}
