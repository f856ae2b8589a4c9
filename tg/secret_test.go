package tg_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/tgbots/tg"
)

const testToken = tg.SecretToken("123456789:ABCdefGHIjklMNOpqrsTUVwxyz")

func TestSecretToken_Redaction(t *testing.T) {
	assert.Equal(t, "123456789:ABCdefGHIjklMNOpqrsTUVwxyz", testToken.Value())
	assert.Equal(t, "[REDACTED]", testToken.String())
	assert.Equal(t, `tg.SecretToken("[REDACTED]")`, testToken.GoString())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", testToken))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%+v", testToken))

	text, err := testToken.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, []byte("[REDACTED]"), text)
}

func TestSecretToken_NotLeakedBySlogOrJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("bot", "token", testToken)
	assert.NotContains(t, buf.String(), testToken.Value())

	data, err := json.Marshal(struct {
		Token tg.SecretToken `json:"token"`
	}{testToken})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ABCdef")
}

func TestSecretToken_Fingerprint(t *testing.T) {
	tests := []struct {
		name  string
		token tg.SecretToken
		botID string
		want  string
	}{
		{"well formed", testToken, "123456789", "123456789:***"},
		{"no colon", tg.SecretToken("garbage"), "", "[REDACTED]"},
		{"empty", tg.SecretToken(""), "", "[REDACTED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.botID, tt.token.BotID())
			assert.Equal(t, tt.want, tt.token.Fingerprint())
		})
	}
}

func TestSecretToken_IsEmpty(t *testing.T) {
	assert.True(t, tg.SecretToken("").IsEmpty())
	assert.False(t, testToken.IsEmpty())
}
