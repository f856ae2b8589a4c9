package bootstrap

import (
	"context"

	"github.com/prilive-com/tgbots/registry"
)

// Module is a unit of bot logic loaded once the registry is filled. Init
// usually looks up its bot in reg and attaches handlers to its dispatcher.
// A nil Init is allowed.
type Module struct {
	Name string
	Init func(ctx context.Context, reg *registry.Registry) error
}
