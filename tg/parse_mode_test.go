package tg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prilive-com/tgbots/tg"
)

func TestParseMode_IsValid(t *testing.T) {
	tests := []struct {
		mode  tg.ParseMode
		valid bool
	}{
		{tg.ParseModeHTML, true},
		{tg.ParseModeMarkdown, true},
		{tg.ParseModeMarkdownV2, true},
		{tg.ParseModeNone, true},
		{tg.ParseMode("html"), false},
		{tg.ParseMode("bbcode"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, tt.mode.IsValid(), "mode %q", tt.mode)
	}
}

func TestChat_IsGroup(t *testing.T) {
	tests := []struct {
		kind  tg.ChatType
		group bool
	}{
		{tg.ChatTypePrivate, false},
		{tg.ChatTypeGroup, true},
		{tg.ChatTypeSupergroup, true},
		{tg.ChatTypeChannel, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.group, tt.kind.IsGroup(), string(tt.kind))
		assert.Equal(t, tt.group, (&tg.Chat{ID: 1, Type: tt.kind}).IsGroup(), string(tt.kind))
	}

	var nilChat *tg.Chat
	assert.False(t, nilChat.IsGroup())
}
