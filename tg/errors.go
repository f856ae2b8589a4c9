package tg

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// Provider answers, matched through APIError.
	ErrUnauthorized    = errors.New("tgbots: unauthorized (invalid token)")
	ErrNotFound        = errors.New("tgbots: not found")
	ErrConflict        = errors.New("tgbots: conflict")
	ErrTooManyRequests = errors.New("tgbots: too many requests")

	ErrCircuitOpen      = errors.New("tgbots: circuit breaker open")
	ErrResponseTooLarge = errors.New("tgbots: response too large")
	ErrClosed           = errors.New("tgbots: bot connection closed")

	ErrInvalidToken  = errors.New("tgbots: invalid bot token format")
	ErrInvalidConfig = errors.New("tgbots: invalid configuration")
)

// statusSentinels maps the Bot API error codes the bootstrap cares about.
// 409 shows up when getUpdates races an active webhook or another poller.
var statusSentinels = map[int]error{
	http.StatusUnauthorized:    ErrUnauthorized,
	http.StatusNotFound:        ErrNotFound,
	http.StatusConflict:        ErrConflict,
	http.StatusTooManyRequests: ErrTooManyRequests,
}

// ResponseParameters is the "parameters" object of a failed Bot API call.
type ResponseParameters struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// APIError is a non-ok Bot API response. errors.Is matches it against
// the sentinel for its code; errors.As exposes RetryAfter.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("tgbots: %s failed: %s (code=%d", e.Method, e.Description, e.Code)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry_after=%s", e.RetryAfter)
	}
	return msg + ")"
}

func (e *APIError) Unwrap() error { return statusSentinels[e.Code] }

func NewAPIError(method string, code int, description string) *APIError {
	return &APIError{Method: method, Code: code, Description: description}
}

// NewAPIErrorWithRetry records the back-off from a flood-control answer.
func NewAPIErrorWithRetry(method string, code int, description string, retryAfter time.Duration) *APIError {
	e := NewAPIError(method, code, description)
	e.RetryAfter = retryAfter
	return e
}

// IsInvalidToken reports whether the token itself was rejected, either by
// the local format check or by the provider. The Bot API answers 401 for
// revoked tokens and 404 for tokens that name no bot.
func IsInvalidToken(err error) bool {
	for _, target := range []error{ErrInvalidToken, ErrUnauthorized, ErrNotFound} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// RetryAfter is the wait requested by a 429 answer anywhere in err's chain.
// A 429 without retry_after still yields one second; anything else is 0.
func RetryAfter(err error) time.Duration {
	var apiErr *APIError
	switch {
	case !errors.As(err, &apiErr), apiErr.Code != http.StatusTooManyRequests:
		return 0
	case apiErr.RetryAfter <= 0:
		return time.Second
	default:
		return apiErr.RetryAfter
	}
}

// ValidationError rejects a request or token before it reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("tgbots: validation: %s - %s", e.Field, e.Message)
}

// Unwrap makes token failures match ErrInvalidToken.
func (e *ValidationError) Unwrap() error {
	if e.Field == "token" {
		return ErrInvalidToken
	}
	return nil
}

// ConfigError names the settings key that failed validation. It always
// matches ErrInvalidConfig.
type ConfigError struct {
	Key     string
	Message string
}

func NewConfigError(key, message string) *ConfigError {
	return &ConfigError{Key: key, Message: message}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tgbots: config: %s - %s", e.Key, e.Message)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }
