package dispatch

import (
	"strings"

	"github.com/prilive-com/tgbots/tg"
)

// Handler decides whether it wants an update and processes it.
type Handler interface {
	Check(u *tg.Update) bool
	Handle(c *Context) error
}

// HandlerFunc processes an update.
type HandlerFunc func(c *Context) error

// ErrorHandler receives errors returned by handlers.
type ErrorHandler func(c *Context, err error)

type commandHandler struct {
	name string
	fn   HandlerFunc
}

// Command handles messages starting with /name (case-insensitive, with or
// without @botname). Context.Args holds the rest of the text.
func Command(name string, fn HandlerFunc) Handler {
	return &commandHandler{name: strings.ToLower(strings.TrimPrefix(name, "/")), fn: fn}
}

func (h *commandHandler) Check(u *tg.Update) bool {
	name, _, ok := u.Message.Command()
	return ok && strings.ToLower(name) == h.name
}

func (h *commandHandler) Handle(c *Context) error {
	_, c.Args, _ = c.Update.Message.Command()
	return h.fn(c)
}

type messageHandler struct {
	filter func(*tg.Message) bool
	fn     HandlerFunc
}

// Message handles new messages accepted by filter. A nil filter accepts all.
func Message(filter func(*tg.Message) bool, fn HandlerFunc) Handler {
	return &messageHandler{filter: filter, fn: fn}
}

func (h *messageHandler) Check(u *tg.Update) bool {
	if u.Message == nil {
		return false
	}
	return h.filter == nil || h.filter(u.Message)
}

func (h *messageHandler) Handle(c *Context) error { return h.fn(c) }

// Text is a Message filter for plain text that is not a command.
func Text(m *tg.Message) bool {
	if m.Text == "" {
		return false
	}
	_, _, isCommand := m.Command()
	return !isCommand
}

type callbackHandler struct {
	prefix string
	fn     HandlerFunc
}

// CallbackQuery handles callback queries whose data starts with prefix.
func CallbackQuery(prefix string, fn HandlerFunc) Handler {
	return &callbackHandler{prefix: prefix, fn: fn}
}

func (h *callbackHandler) Check(u *tg.Update) bool {
	return u.CallbackQuery != nil && strings.HasPrefix(u.CallbackQuery.Data, h.prefix)
}

func (h *callbackHandler) Handle(c *Context) error { return h.fn(c) }

type anyHandler struct {
	fn HandlerFunc
}

// Any handles every update.
func Any(fn HandlerFunc) Handler {
	return anyHandler{fn: fn}
}

func (h anyHandler) Check(*tg.Update) bool   { return true }
func (h anyHandler) Handle(c *Context) error { return h.fn(c) }

type asyncHandler struct {
	Handler
}

// Async marks h to run on the worker pool.
func Async(h Handler) Handler {
	return asyncHandler{Handler: h}
}

func isAsync(h Handler) bool {
	_, ok := h.(asyncHandler)
	return ok
}
