package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// MockTelegramServer is a Bot API stand-in that serves several bots at once.
// Requests are routed by the token in /bot<token>/<method>. Tokens that were
// never registered with AddBot get a 401, like the real provider.
type MockTelegramServer struct {
	*httptest.Server
	t        *testing.T
	mu       sync.Mutex
	bots     map[string]string // token -> username
	webhooks map[string]string // token -> url set via setWebhook
	handlers map[string]http.HandlerFunc
	captures []Capture
}

// NewMockServer creates a mock Bot API server.
// The server is automatically closed when the test completes.
func NewMockServer(t *testing.T) *MockTelegramServer {
	t.Helper()

	m := &MockTelegramServer{
		t:        t,
		bots:     make(map[string]string),
		webhooks: make(map[string]string),
		handlers: make(map[string]http.HandlerFunc),
	}

	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Server.Close)
	return m
}

// AddBot registers a token the server will accept, answering getMe with
// the given username.
func (m *MockTelegramServer) AddBot(token, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bots[token] = username
}

// On overrides the reply for one token and API method.
func (m *MockTelegramServer) On(token, method string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[token+"/"+method] = handler
}

// SplitPath extracts token and method from /bot<token>/<method>.
func SplitPath(path string) (token, method string, ok bool) {
	rest, found := strings.CutPrefix(path, "/bot")
	if !found {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, '/')
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

func (m *MockTelegramServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	token, method, ok := SplitPath(r.URL.Path)

	m.mu.Lock()
	m.captures = append(m.captures, Capture{
		Method:      r.Method,
		Path:        r.URL.Path,
		Token:       token,
		APIMethod:   method,
		Headers:     r.Header.Clone(),
		Body:        body,
		ContentType: r.Header.Get("Content-Type"),
		Timestamp:   time.Now(),
	})
	handler, overridden := m.handlers[token+"/"+method]
	username, known := m.bots[token]
	m.mu.Unlock()

	if !ok {
		ReplyNotFound(w, "unknown path")
		return
	}
	if overridden {
		handler(w, r)
		return
	}
	if !known {
		ReplyUnauthorized(w)
		return
	}
	m.defaultReply(w, r, token, username, method, body)
}

func (m *MockTelegramServer) defaultReply(w http.ResponseWriter, r *http.Request, token, username, method string, body []byte) {
	switch method {
	case "getMe":
		id, _ := strconv.ParseInt(strings.SplitN(token, ":", 2)[0], 10, 64)
		ReplyUser(w, id, username)
	case "setWebhook":
		url := r.FormValue("url")
		if url == "" {
			var req struct {
				URL string `json:"url"`
			}
			_ = json.Unmarshal(body, &req)
			url = req.URL
		}
		m.mu.Lock()
		m.webhooks[token] = url
		m.mu.Unlock()
		ReplyOK(w, true)
	case "deleteWebhook":
		m.mu.Lock()
		delete(m.webhooks, token)
		m.mu.Unlock()
		ReplyOK(w, true)
	case "getWebhookInfo":
		m.mu.Lock()
		url := m.webhooks[token]
		m.mu.Unlock()
		ReplyWebhookInfo(w, url, 0)
	case "getUpdates":
		ReplyEmptyUpdates(w)
	case "sendMessage":
		ReplyMessage(w, 1)
	default:
		ReplyOK(w, true)
	}
}

// Captures returns all captured requests.
func (m *MockTelegramServer) Captures() []Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Capture{}, m.captures...)
}

// CapturesFor returns the requests made for one API method, in order.
func (m *MockTelegramServer) CapturesFor(method string) []Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Capture
	for _, c := range m.captures {
		if c.APIMethod == method {
			out = append(out, c)
		}
	}
	return out
}

// LastCapture returns the most recent captured request.
func (m *MockTelegramServer) LastCapture() *Capture {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.captures) == 0 {
		return nil
	}
	return &m.captures[len(m.captures)-1]
}

// CaptureCount returns the total number of captured requests.
func (m *MockTelegramServer) CaptureCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.captures)
}

// ResetCaptures clears only captures, keeping bots and handlers.
func (m *MockTelegramServer) ResetCaptures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.captures = m.captures[:0]
}

// WebhookURL returns the URL last set for token.
func (m *MockTelegramServer) WebhookURL(token string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.webhooks[token]
}

// BaseURL returns the server's base URL.
// Use this as the API base URL when creating clients.
func (m *MockTelegramServer) BaseURL() string {
	return m.Server.URL
}
