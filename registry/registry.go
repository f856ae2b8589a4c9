package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prilive-com/tgbots/botapi"
	"github.com/prilive-com/tgbots/dispatch"
	"github.com/prilive-com/tgbots/internal/syncutil"
	"github.com/prilive-com/tgbots/internal/validate"
	"github.com/prilive-com/tgbots/tg"
	"github.com/prilive-com/tgbots/updater"
)

var (
	ErrDuplicateToken   = errors.New("tgbots: duplicate bot token")
	ErrIncompleteHandle = errors.New("tgbots: incomplete bot handle")
	ErrNotFound         = errors.New("tgbots: bot not found")
	ErrNoBots           = errors.New("tgbots: no bots configured")
	ErrNoUpdater        = errors.New("tgbots: bot has no updater")
)

// Registry is the ordered set of bot handles.
type Registry struct {
	mu      sync.RWMutex
	handles []*Handle
	byToken map[string]*Handle

	used syncutil.OrderedSet[tg.SecretToken]
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byToken: make(map[string]*Handle)}
}

// Add appends h. The first handle added becomes the default.
func (r *Registry) Add(h *Handle) error {
	if err := h.Validate(false); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byToken[h.Token.Value()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateToken, h.Token.Fingerprint())
	}
	r.byToken[h.Token.Value()] = h
	r.handles = append(r.handles, h)
	return nil
}

// All returns the handles in insertion order.
func (r *Registry) All() []*Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Handle(nil), r.handles...)
}

// Len returns the number of handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Default returns the first handle added.
func (r *Registry) Default() (*Handle, error) {
	r.mu.RLock()
	var h *Handle
	if len(r.handles) > 0 {
		h = r.handles[0]
	}
	r.mu.RUnlock()

	if h == nil {
		return nil, ErrNoBots
	}
	r.used.Add(h.Token)
	return h, nil
}

// Resolve finds a handle by token, then configured id, then username; an
// empty identifier means the default. Without a match Resolve returns
// ErrNotFound when strict and (nil, nil) otherwise.
func (r *Registry) Resolve(identifier string, strict bool) (*Handle, error) {
	if identifier == "" {
		return r.Default()
	}

	h := r.find(identifier)
	if h == nil {
		if strict {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, describe(identifier))
		}
		return nil, nil
	}
	r.used.Add(h.Token)
	return h, nil
}

func (r *Registry) find(identifier string) *Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.byToken[identifier]; ok {
		return h
	}
	for _, h := range r.handles {
		if h.ID == identifier {
			return h
		}
	}
	name := strings.TrimPrefix(identifier, "@")
	for _, h := range r.handles {
		if u := h.Username(); u != "" && u == name {
			return h
		}
	}
	return nil
}

// describe keeps tokens out of error text.
func describe(identifier string) string {
	if validate.Token(identifier) == nil {
		return tg.SecretToken(identifier).Fingerprint()
	}
	return identifier
}

// Bot resolves identifier and returns its bot.
func (r *Registry) Bot(identifier string, strict bool) (*botapi.Bot, error) {
	h, err := r.Resolve(identifier, strict)
	if h == nil {
		return nil, err
	}
	return h.Bot, nil
}

// Dispatcher resolves identifier and returns its dispatcher.
func (r *Registry) Dispatcher(identifier string, strict bool) (*dispatch.Dispatcher, error) {
	h, err := r.Resolve(identifier, strict)
	if h == nil {
		return nil, err
	}
	return h.Dispatcher, nil
}

// Updater resolves identifier and returns its updater. A handle without an
// updater is ErrNoUpdater when strict and (nil, nil) otherwise.
func (r *Registry) Updater(identifier string, strict bool) (*updater.Updater, error) {
	h, err := r.Resolve(identifier, strict)
	if h == nil {
		return nil, err
	}
	if h.Updater == nil {
		if strict {
			return nil, fmt.Errorf("%w: %s", ErrNoUpdater, h.Name())
		}
		return nil, nil
	}
	return h.Updater, nil
}

// DefaultBot returns the default handle's bot.
func (r *Registry) DefaultBot() (*botapi.Bot, error) {
	return r.Bot("", true)
}

// DefaultDispatcher returns the default handle's dispatcher.
func (r *Registry) DefaultDispatcher() (*dispatch.Dispatcher, error) {
	return r.Dispatcher("", true)
}

// DefaultUpdater returns the default handle's updater.
func (r *Registry) DefaultUpdater() (*updater.Updater, error) {
	return r.Updater("", true)
}

// MarkUsed records token in the used-token set.
func (r *Registry) MarkUsed(token tg.SecretToken) {
	r.used.Add(token)
}

// UsedTokens returns the used-token set in first-use order.
func (r *Registry) UsedTokens() []tg.SecretToken {
	return r.used.Snapshot()
}

// UsedHandles returns the registered handles whose tokens are in the
// used-token set, in first-use order.
func (r *Registry) UsedHandles() []*Handle {
	tokens := r.used.Snapshot()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Handle, 0, len(tokens))
	for _, t := range tokens {
		if h, ok := r.byToken[t.Value()]; ok {
			out = append(out, h)
		}
	}
	return out
}

// Close closes every handle. The registry itself stays readable.
func (r *Registry) Close() error {
	var errs []error
	for _, h := range r.All() {
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
