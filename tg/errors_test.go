package tg_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prilive-com/tgbots/tg"
)

func TestAPIError_Error(t *testing.T) {
	err := tg.NewAPIError("setWebhook", 400, "Bad Request: bad webhook")
	assert.Equal(t, "tgbots: setWebhook failed: Bad Request: bad webhook (code=400)", err.Error())

	err = tg.NewAPIErrorWithRetry("setWebhook", 429, "Too Many Requests", 3*time.Second)
	assert.Equal(t, "tgbots: setWebhook failed: Too Many Requests (code=429, retry_after=3s)", err.Error())
}

func TestAPIError_Sentinels(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{401, tg.ErrUnauthorized},
		{404, tg.ErrNotFound},
		{409, tg.ErrConflict},
		{429, tg.ErrTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			assert.ErrorIs(t, tg.NewAPIError("getMe", tt.code, "x"), tt.want)
		})
	}

	err := tg.NewAPIError("setWebhook", 400, "Bad Request: bad webhook")
	assert.Nil(t, errors.Unwrap(err))
}

func TestIsInvalidToken(t *testing.T) {
	assert.True(t, tg.IsInvalidToken(tg.NewAPIError("getMe", 401, "Unauthorized")))
	assert.True(t, tg.IsInvalidToken(tg.NewAPIError("getMe", 404, "Not Found")))
	assert.True(t, tg.IsInvalidToken(tg.NewValidationError("token", "bot_id must be numeric")))
	assert.True(t, tg.IsInvalidToken(fmt.Errorf("wrapped: %w", tg.ErrInvalidToken)))

	assert.False(t, tg.IsInvalidToken(tg.NewAPIError("getMe", 500, "Internal Server Error")))
	assert.False(t, tg.IsInvalidToken(tg.NewAPIError("setWebhook", 429, "Too Many Requests")))
	assert.False(t, tg.IsInvalidToken(tg.NewValidationError("url", "empty")))
	assert.False(t, tg.IsInvalidToken(errors.New("boom")))
}

func TestRetryAfter(t *testing.T) {
	err := fmt.Errorf("bootstrap: %w", tg.NewAPIErrorWithRetry("setWebhook", 429, "Too Many Requests", 7*time.Second))
	assert.Equal(t, 7*time.Second, tg.RetryAfter(err))

	// 429 without parameters still asks for a minimal pause.
	assert.Equal(t, time.Second, tg.RetryAfter(tg.NewAPIError("setWebhook", 429, "Too Many Requests")))

	assert.Zero(t, tg.RetryAfter(tg.NewAPIError("setWebhook", 400, "Bad Request")))
	assert.Zero(t, tg.RetryAfter(errors.New("network down")))
}

func TestConfigError_Unwrap(t *testing.T) {
	err := tg.NewConfigError("webhook_site", "required in webhook mode")
	assert.ErrorIs(t, err, tg.ErrInvalidConfig)
	assert.Equal(t, "tgbots: config: webhook_site - required in webhook mode", err.Error())
}
