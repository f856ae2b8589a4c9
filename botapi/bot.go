package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/prilive-com/tgbots/internal/httpclient"
	"github.com/prilive-com/tgbots/internal/resilience"
	"github.com/prilive-com/tgbots/internal/scrub"
	"github.com/prilive-com/tgbots/internal/validate"
	"github.com/prilive-com/tgbots/tg"
)

const (
	maxResponseSize = 10 << 20 // 10MB
)

// Bot is a live connection to the Bot API for one token.
type Bot struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	breaker    *gobreaker.CircuitBreaker[*apiResponse]
	queue      *resilience.MessageQueue // nil when the queue is disabled

	self        atomic.Pointer[tg.User]
	webhookInfo atomic.Pointer[tg.WebhookInfo]

	closeOnce sync.Once
	closed    atomic.Bool
}

type apiResponse struct {
	OK          bool                   `json:"ok"`
	Result      json.RawMessage        `json:"result,omitempty"`
	ErrorCode   int                    `json:"error_code,omitempty"`
	Description string                 `json:"description,omitempty"`
	Parameters  *tg.ResponseParameters `json:"parameters,omitempty"`
}

// Option configures the Bot.
type Option func(*Bot)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client. Proxy and pool settings are
// ignored when one is supplied.
func WithHTTPClient(client *http.Client) Option {
	return func(b *Bot) {
		b.httpClient = client
	}
}

// WithBaseURL sets the API base URL (useful for testing).
func WithBaseURL(url string) Option {
	return func(b *Bot) {
		b.config.BaseURL = url
	}
}

// WithProxy routes requests through an outbound proxy.
func WithProxy(p ProxyConfig) Option {
	return func(b *Bot) {
		b.config.Proxy = p
	}
}

// WithQueue configures the outbound message queue.
func WithQueue(q QueueConfig) Option {
	return func(b *Bot) {
		b.config.Queue = q
	}
}

// WithRequestTimeout bounds each control-plane request.
func WithRequestTimeout(d time.Duration) Option {
	return func(b *Bot) {
		b.config.RequestTimeout = d
	}
}

// New creates a Bot for token with default configuration.
func New(token string, opts ...Option) (*Bot, error) {
	cfg := DefaultConfig()
	cfg.Token = tg.SecretToken(token)
	return NewFromConfig(cfg, opts...)
}

// NewFromConfig creates a Bot from a Config. The token format is checked
// locally; no request is made.
func NewFromConfig(cfg Config, opts ...Option) (*Bot, error) {
	if err := validate.Token(cfg.Token.Value()); err != nil {
		return nil, err
	}

	b := &Bot{config: cfg}
	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.config.BaseURL == "" {
		b.config.BaseURL = DefaultBaseURL
	}
	if b.config.RequestTimeout <= 0 {
		b.config.RequestTimeout = DefaultConfig().RequestTimeout
	}

	if b.httpClient == nil {
		hc := httpclient.DefaultConfig()
		hc.ProxyURL = b.config.Proxy.URL
		hc.ProxyUsername = b.config.Proxy.Username
		hc.ProxyPassword = b.config.Proxy.Password.Value()
		if b.config.Queue.Enabled {
			hc.PoolSize = b.config.Queue.PoolSize
		}
		client, err := httpclient.New(hc)
		if err != nil {
			return nil, err
		}
		b.httpClient = client
	}

	if b.config.Queue.Enabled {
		b.queue = resilience.NewMessageQueue(resilience.QueueConfig{
			AllBurstLimit:   b.config.Queue.AllBurstLimit,
			AllTimeLimit:    b.config.Queue.AllTimeLimit,
			GroupBurstLimit: b.config.Queue.GroupBurstLimit,
			GroupTimeLimit:  b.config.Queue.GroupTimeLimit,
		})
	}

	b.breaker = resilience.NewBreaker[*apiResponse](resilience.BreakerConfig{
		Name:         "tgbots-" + b.config.Token.Fingerprint(),
		MaxRequests:  b.config.BreakerMaxRequests,
		Interval:     b.config.BreakerInterval,
		Timeout:      b.config.BreakerTimeout,
		Threshold:    b.config.BreakerThreshold,
		IsSuccessful: isBreakerSuccess,
		Logger:       b.logger,
	})

	return b, nil
}

// Token returns the bot's token.
func (b *Bot) Token() tg.SecretToken {
	return b.config.Token
}

// Self returns the identity reported by the last successful GetMe, or nil.
func (b *Bot) Self() *tg.User {
	return b.self.Load()
}

// Username returns the provider-reported username, or "" before GetMe.
func (b *Bot) Username() string {
	if u := b.self.Load(); u != nil {
		return u.Username
	}
	return ""
}

// WebhookInfo returns the webhook state last acknowledged by the provider,
// or nil if GetWebhookInfo was never called.
func (b *Bot) WebhookInfo() *tg.WebhookInfo {
	return b.webhookInfo.Load()
}

// Queued reports whether outbound messages go through the message queue.
func (b *Bot) Queued() bool {
	return b.queue != nil
}

// Close stops the message queue and releases idle connections.
// Safe to call more than once.
func (b *Bot) Close() error {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		if b.queue != nil {
			b.queue.Close()
		}
		b.httpClient.CloseIdleConnections()
	})
	return nil
}

func (b *Bot) executeRequest(ctx context.Context, method string, payload any, extra time.Duration) (*apiResponse, error) {
	if b.closed.Load() {
		return nil, tg.ErrClosed
	}
	resp, err := b.breaker.Execute(func() (*apiResponse, error) {
		return b.doRequest(ctx, method, payload, extra)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", tg.ErrCircuitOpen, err)
	}
	return resp, err
}

func (b *Bot) doRequest(ctx context.Context, method string, payload any, extra time.Duration) (*apiResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, b.config.RequestTimeout+extra)
	defer cancel()

	url := fmt.Sprintf("%s/bot%s/%s", b.config.BaseURL, b.config.Token.Value(), method)

	var (
		body        io.Reader
		contentType string
	)
	if mp, ok := payload.(multipartPayload); ok {
		buf, ct, err := mp.encodeMultipart()
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", method, err)
		}
		body, contentType = buf, ct
	} else {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", scrub.TokenFromError(err, b.config.Token))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", method, scrub.TokenFromError(err, b.config.Token))
	}
	defer resp.Body.Close()

	// Read one byte past the limit to detect overflow.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(raw)) > maxResponseSize {
		return nil, tg.ErrResponseTooLarge
	}

	var apiResp apiResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, tg.NewAPIError(method, resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if !apiResp.OK {
		code := apiResp.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return nil, tg.NewAPIErrorWithRetry(method, code, apiResp.Description, parseRetryAfter(&apiResp, resp))
	}

	return &apiResp, nil
}

// isBreakerSuccess determines if an error should count as a circuit breaker failure.
// Only server errors (5xx) and network errors trip the breaker.
// 429 is rate pressure, handled through retry_after.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *tg.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 400 && apiErr.Code < 500
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	return false
}

// parseRetryAfter extracts retry_after from JSON body (primary) or HTTP header (fallback).
func parseRetryAfter(apiResp *apiResponse, httpResp *http.Response) time.Duration {
	if apiResp.Parameters != nil && apiResp.Parameters.RetryAfter > 0 {
		return time.Duration(apiResp.Parameters.RetryAfter) * time.Second
	}

	if httpResp != nil {
		if retryHeader := httpResp.Header.Get("Retry-After"); retryHeader != "" {
			if seconds, err := strconv.Atoi(retryHeader); err == nil && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}

	return 0
}
