package botapi

import (
	"time"

	"github.com/prilive-com/tgbots/internal/resilience"
	"github.com/prilive-com/tgbots/tg"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// ProxyConfig routes the bot's HTTP traffic through a proxy.
// URL schemes: http, https, socks5, socks5h.
type ProxyConfig struct {
	URL      string
	Username string
	Password tg.SecretToken
}

// QueueConfig enables the outbound message queue. PoolSize is the
// connection-pool size of the transport the queue sends through.
type QueueConfig struct {
	Enabled         bool
	AllBurstLimit   int
	AllTimeLimit    time.Duration
	GroupBurstLimit int
	GroupTimeLimit  time.Duration
	PoolSize        int
}

// DefaultQueueConfig returns an enabled queue with the Bot API flood limits
// and a pool of 8 connections.
func DefaultQueueConfig() QueueConfig {
	q := resilience.DefaultQueueConfig()
	return QueueConfig{
		Enabled:         true,
		AllBurstLimit:   q.AllBurstLimit,
		AllTimeLimit:    q.AllTimeLimit,
		GroupBurstLimit: q.GroupBurstLimit,
		GroupTimeLimit:  q.GroupTimeLimit,
		PoolSize:        8,
	}
}

// Config holds bot connection configuration.
type Config struct {
	Token tg.SecretToken

	BaseURL        string
	RequestTimeout time.Duration

	Proxy ProxyConfig
	Queue QueueConfig

	// Circuit breaker
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
	BreakerThreshold   uint32
}

// DefaultConfig returns a Config with sensible defaults. The queue is off.
func DefaultConfig() Config {
	return Config{
		BaseURL:            DefaultBaseURL,
		RequestTimeout:     30 * time.Second,
		BreakerMaxRequests: 5,
		BreakerInterval:    60 * time.Second,
		BreakerTimeout:     30 * time.Second,
		BreakerThreshold:   5,
	}
}
