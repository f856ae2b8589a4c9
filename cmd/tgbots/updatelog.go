package main

import (
	"context"
	"log/slog"

	"github.com/prilive-com/tgbots/bootstrap"
	"github.com/prilive-com/tgbots/dispatch"
	"github.com/prilive-com/tgbots/registry"
)

// updateLogGroup runs before any application handler group.
const updateLogGroup = -1 << 20

// updateLogModule logs every update each registered bot receives.
func updateLogModule(logger *slog.Logger) bootstrap.Module {
	return bootstrap.Module{
		Name: "updatelog",
		Init: func(ctx context.Context, reg *registry.Registry) error {
			for _, h := range reg.All() {
				name := h.Name()
				h.Dispatcher.AddHandler(dispatch.Any(func(c *dispatch.Context) error {
					attrs := []any{"bot", name, "update_id", c.Update.UpdateID}
					if chat := c.Update.EffectiveChat(); chat != nil {
						attrs = append(attrs, "chat_id", chat.ID)
					}
					if user := c.Update.EffectiveUser(); user != nil {
						attrs = append(attrs, "user_id", user.ID)
					}
					if m := c.Update.EffectiveMessage(); m != nil && m.Text != "" {
						attrs = append(attrs, "text_len", len(m.Text))
					}
					logger.Info("update received", attrs...)
					return nil
				}), updateLogGroup)
			}
			return nil
		},
	}
}
