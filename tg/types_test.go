package tg_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prilive-com/tgbots/tg"
)

func commandMessage(text string, length int) *tg.Message {
	return &tg.Message{
		MessageID: 1,
		Chat:      &tg.Chat{ID: 42, Type: "private"},
		Text:      text,
		Entities:  []tg.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestMessage_Command(t *testing.T) {
	name, args, ok := commandMessage("/start hello world", 6).Command()
	require.True(t, ok)
	assert.Equal(t, "start", name)
	assert.Equal(t, "hello world", args)

	name, args, ok = commandMessage("/help@testbot", 13).Command()
	require.True(t, ok)
	assert.Equal(t, "help", name)
	assert.Empty(t, args)

	_, _, ok = (&tg.Message{Text: "plain"}).Command()
	assert.False(t, ok)

	var nilMsg *tg.Message
	_, _, ok = nilMsg.Command()
	assert.False(t, ok)
}

func TestUpdate_Effective(t *testing.T) {
	raw := `{
		"update_id": 10,
		"callback_query": {
			"id": "cb1",
			"from": {"id": 7, "is_bot": false, "first_name": "Ann"},
			"chat_instance": "x",
			"data": "vote:1",
			"message": {"message_id": 3, "date": 1, "chat": {"id": -100, "type": "supergroup"}}
		}
	}`

	var u tg.Update
	require.NoError(t, json.Unmarshal([]byte(raw), &u))

	assert.Equal(t, 3, u.EffectiveMessage().MessageID)
	assert.Equal(t, int64(-100), u.EffectiveChat().ID)
	assert.True(t, u.EffectiveChat().IsGroup())
	assert.Equal(t, int64(7), u.EffectiveUser().ID)

	empty := tg.Update{UpdateID: 1}
	assert.Nil(t, empty.EffectiveMessage())
	assert.Nil(t, empty.EffectiveChat())
	assert.Nil(t, empty.EffectiveUser())
}

func TestWebhookInfo_EffectiveAllowedUpdates(t *testing.T) {
	info := &tg.WebhookInfo{URL: "https://example.com/hook/"}
	assert.Equal(t, []string{"ALL"}, info.EffectiveAllowedUpdates())

	info.AllowedUpdates = []string{"message"}
	assert.Equal(t, []string{"message"}, info.EffectiveAllowedUpdates())
}
