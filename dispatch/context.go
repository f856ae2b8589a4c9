package dispatch

import (
	"context"
	"sync"

	"github.com/prilive-com/tgbots/botapi"
	"github.com/prilive-com/tgbots/tg"
)

// Context is what a handler sees for one update.
type Context struct {
	context.Context

	Bot    *botapi.Bot
	Update *tg.Update

	// Args is the text after the command for Command handlers.
	Args string

	// Persistent data, nil unless the dispatcher uses context.
	ChatData *Data
	UserData *Data
	BotData  *Data
}

// Reply sends text to the chat the update came from.
func (c *Context) Reply(text string) (*tg.Message, error) {
	chat := c.Update.EffectiveChat()
	if chat == nil {
		return nil, ErrNoChat
	}
	return c.Bot.SendMessage(c, botapi.SendMessageRequest{ChatID: chat.ID, Text: text})
}

// Data is a concurrency-safe key/value store that outlives a single update.
type Data struct {
	mu sync.RWMutex
	m  map[string]any
}

// Get returns the value stored under key.
func (d *Data) Get(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.m[key]
	return v, ok
}

// Set stores value under key.
func (d *Data) Set(key string, value any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.m == nil {
		d.m = make(map[string]any)
	}
	d.m[key] = value
}

// Delete removes key.
func (d *Data) Delete(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.m, key)
}

// Len returns the number of stored keys.
func (d *Data) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.m)
}

type dataStore struct {
	mu    sync.Mutex
	chats map[int64]*Data
	users map[int64]*Data
	bot   Data
}

func newDataStore() *dataStore {
	return &dataStore{
		chats: make(map[int64]*Data),
		users: make(map[int64]*Data),
	}
}

func (s *dataStore) chat(id int64) *Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.chats[id]
	if !ok {
		d = &Data{}
		s.chats[id] = d
	}
	return d
}

func (s *dataStore) user(id int64) *Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.users[id]
	if !ok {
		d = &Data{}
		s.users[id] = d
	}
	return d
}
