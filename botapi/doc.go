// Package botapi is one live bot connection: the HTTP transport (proxy and
// connection pool), an optional outbound message queue, a circuit breaker,
// and the handful of Bot API methods that connection bootstrap and update
// delivery need.
//
// # Usage
//
//	bot, err := botapi.New(token,
//	    botapi.WithQueue(botapi.DefaultQueueConfig()),
//	    botapi.WithProxy(botapi.ProxyConfig{URL: "socks5://127.0.0.1:1080"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bot.Close()
//
//	me, err := bot.GetMe(ctx)
//
// Tokens are held as tg.SecretToken and scrubbed from transport errors.
package botapi
