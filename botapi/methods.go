package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prilive-com/tgbots/internal/validate"
	"github.com/prilive-com/tgbots/tg"
)

const maxTextLength = 4096

// SetWebhookRequest registers a webhook URL.
type SetWebhookRequest struct {
	URL                string   `json:"url"`
	MaxConnections     int      `json:"max_connections,omitempty"`
	AllowedUpdates     []string `json:"allowed_updates,omitempty"`
	DropPendingUpdates bool     `json:"drop_pending_updates,omitempty"`
	SecretToken        string   `json:"secret_token,omitempty"`

	// Certificate is a self-signed public key in PEM form. When set, the
	// request is sent as multipart/form-data.
	Certificate     []byte `json:"-"`
	CertificateName string `json:"-"`
}

// GetUpdatesRequest fetches pending updates by long polling.
type GetUpdatesRequest struct {
	Offset         int      `json:"offset,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Timeout        int      `json:"timeout,omitempty"` // seconds
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// SendMessageRequest sends a text message.
type SendMessageRequest struct {
	ChatID           tg.ChatID    `json:"chat_id"`
	Text             string       `json:"text"`
	ParseMode        tg.ParseMode `json:"parse_mode,omitempty"`
	ReplyToMessageID int          `json:"reply_to_message_id,omitempty"`
	MessageThreadID  int          `json:"message_thread_id,omitempty"`
}

type deleteWebhookRequest struct {
	DropPendingUpdates bool `json:"drop_pending_updates,omitempty"`
}

// GetMe returns the bot's identity and remembers it for Self and Username.
func (b *Bot) GetMe(ctx context.Context) (*tg.User, error) {
	resp, err := b.executeRequest(ctx, "getMe", struct{}{}, 0)
	if err != nil {
		return nil, err
	}
	user, err := parseResult[tg.User](resp)
	if err != nil {
		return nil, err
	}
	b.self.Store(user)
	return user, nil
}

// SetWebhook registers req.URL as the bot's webhook.
func (b *Bot) SetWebhook(ctx context.Context, req SetWebhookRequest) error {
	var payload any = req
	if len(req.Certificate) > 0 {
		payload = certificateUpload{req}
	}
	_, err := b.executeRequest(ctx, "setWebhook", payload, 0)
	return err
}

// GetWebhookInfo reads back the webhook state acknowledged by the provider
// and remembers it for WebhookInfo.
func (b *Bot) GetWebhookInfo(ctx context.Context) (*tg.WebhookInfo, error) {
	resp, err := b.executeRequest(ctx, "getWebhookInfo", struct{}{}, 0)
	if err != nil {
		return nil, err
	}
	info, err := parseResult[tg.WebhookInfo](resp)
	if err != nil {
		return nil, err
	}
	b.webhookInfo.Store(info)
	return info, nil
}

// DeleteWebhook clears any registered webhook so getUpdates may be used.
func (b *Bot) DeleteWebhook(ctx context.Context, dropPending bool) error {
	_, err := b.executeRequest(ctx, "deleteWebhook", deleteWebhookRequest{DropPendingUpdates: dropPending}, 0)
	return err
}

// GetUpdates long-polls for updates. The request deadline is extended by
// the long-poll timeout.
func (b *Bot) GetUpdates(ctx context.Context, req GetUpdatesRequest) ([]tg.Update, error) {
	extra := time.Duration(req.Timeout) * time.Second
	resp, err := b.executeRequest(ctx, "getUpdates", req, extra)
	if err != nil {
		return nil, err
	}
	updates, err := parseResult[[]tg.Update](resp)
	if err != nil {
		return nil, err
	}
	return *updates, nil
}

// SendMessage sends a text message. With the message queue enabled the call
// first waits for a slot, per chat for group chats.
func (b *Bot) SendMessage(ctx context.Context, req SendMessageRequest) (*tg.Message, error) {
	if err := validate.ChatID(req.ChatID); err != nil {
		return nil, err
	}
	if err := validate.Text(req.Text, maxTextLength); err != nil {
		return nil, err
	}
	if !req.ParseMode.IsValid() {
		return nil, tg.NewValidationError("parse_mode", "unsupported: "+string(req.ParseMode))
	}

	if b.queue != nil {
		id, group := queueKey(req.ChatID)
		if err := b.queue.Wait(ctx, id, group); err != nil {
			return nil, err
		}
	}

	resp, err := b.executeRequest(ctx, "sendMessage", req, 0)
	if err != nil {
		return nil, err
	}
	return parseResult[tg.Message](resp)
}

// queueKey maps a chat id to its queue limiter. Negative ids are groups and
// channels. @usernames only count against the all-senders limit.
func queueKey(chatID tg.ChatID) (int64, bool) {
	switch v := chatID.(type) {
	case int64:
		return v, v < 0
	case int:
		return int64(v), v < 0
	}
	return 0, false
}

func parseResult[T any](resp *apiResponse) (*T, error) {
	var v T
	if err := json.Unmarshal(resp.Result, &v); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	return &v, nil
}
