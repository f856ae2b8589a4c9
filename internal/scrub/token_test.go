package scrub_test

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/tgbots/internal/scrub"
	"github.com/prilive-com/tgbots/tg"
)

func TestTokenFromError_NilAndUntouched(t *testing.T) {
	assert.Nil(t, scrub.TokenFromError(nil, tg.SecretToken("123:ABC")))

	original := errors.New("connection refused")
	assert.Equal(t, original, scrub.TokenFromError(original, tg.SecretToken("123:ABC")))
	assert.Equal(t, original, scrub.TokenFromError(original, tg.SecretToken("")))
}

func TestTokenFromError_ReplacesWithFingerprint(t *testing.T) {
	token := tg.SecretToken("123456:ABCdef")
	original := fmt.Errorf("Post https://api.telegram.org/bot123456:ABCdef/setWebhook: dial tcp: no such host")

	result := scrub.TokenFromError(original, token)

	require.NotEqual(t, original, result)
	assert.Contains(t, result.Error(), "bot123456:***/setWebhook")
	assert.NotContains(t, result.Error(), "ABCdef")
}

func TestTokenFromError_PreservesErrorChain(t *testing.T) {
	token := tg.SecretToken("123456:ABCdef")
	netErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	wrapped := fmt.Errorf("Post https://api.telegram.org/bot123456:ABCdef/getMe: %w", netErr)

	result := scrub.TokenFromError(wrapped, token)

	var opErr *net.OpError
	assert.True(t, errors.As(result, &opErr))
}

func TestString_MultipleTokens(t *testing.T) {
	a := tg.SecretToken("1:aaa")
	b := tg.SecretToken("2:bbb")

	out := scrub.String("tokens 1:aaa and 2:bbb", a, b)
	assert.Equal(t, "tokens 1:*** and 2:***", out)
}
