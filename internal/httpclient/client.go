// Package httpclient builds the HTTP transport a bot connection talks through.
package httpclient

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/prilive-com/tgbots/tg"
)

// Config holds HTTP transport configuration.
type Config struct {
	// Timeouts
	ConnectTimeout time.Duration
	TLSTimeout     time.Duration
	IdleTimeout    time.Duration

	// Connection pool. PoolSize caps both idle and active connections to the
	// Bot API host; 0 keeps the net/http defaults.
	MaxIdleConns int
	PoolSize     int

	// Outbound proxy. Credentials are applied to the proxy URL userinfo.
	ProxyURL      string
	ProxyUsername string
	ProxyPassword string

	// TLS
	InsecureSkipVerify bool // Only for testing
}

// DefaultConfig returns sensible defaults for the Bot API.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 10 * time.Second,
		TLSTimeout:     10 * time.Second,
		IdleTimeout:    90 * time.Second,
		MaxIdleConns:   100,
	}
}

// New creates an HTTP client. It carries no overall timeout: callers bound
// each request with a context deadline, which lets long-poll requests run
// longer than control-plane calls on the same transport.
func New(cfg Config) (*http.Client, error) {
	proxy, err := proxyFunc(cfg)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: proxy,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
		TLSHandshakeTimeout:   cfg.TLSTimeout,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.PoolSize,
		MaxConnsPerHost:       cfg.PoolSize,
		IdleConnTimeout:       cfg.IdleTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{Transport: transport}, nil
}

// proxyFunc returns the transport proxy selector. Without a configured proxy
// the environment (HTTPS_PROXY, NO_PROXY) is honoured as usual.
func proxyFunc(cfg Config) (func(*http.Request) (*url.URL, error), error) {
	if cfg.ProxyURL == "" {
		return http.ProxyFromEnvironment, nil
	}

	u, err := url.Parse(cfg.ProxyURL)
	if err != nil {
		return nil, tg.NewConfigError("proxy.url", fmt.Sprintf("unparsable: %v", err))
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, tg.NewConfigError("proxy.url", fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return nil, tg.NewConfigError("proxy.url", "missing host")
	}

	if cfg.ProxyUsername != "" {
		u.User = url.UserPassword(cfg.ProxyUsername, cfg.ProxyPassword)
	}
	return http.ProxyURL(u), nil
}
