// Package tgbots runs several Telegram bots from one process.
//
// A Hub reads the process settings, connects every configured bot at
// startup and keeps them in a registry that handlers and background jobs
// query by token, configured id or username. The first configured bot is
// the default.
//
// # Quick Start
//
//	settings, err := config.Load("tgbots.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hub, err := tgbots.New(*settings,
//	    tgbots.WithModules(bootstrap.Module{Name: "echo", Init: echo.Init}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer hub.Close()
//
//	if err := hub.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	bot, _ := hub.Registry().DefaultBot()
//
// # Delivery modes
//
// In WEBHOOK mode each bot registers <site>/<prefix>/<token>/ with the
// provider; serving that URL is left to the application. In POLLING mode
// each bot gets an updater that is built but not started; the startup log
// lists the command that starts each one.
//
// # Packages
//
//   - botapi: one bot connection with breaker, proxy and message queue
//   - dispatch: handler groups for incoming updates
//   - updater: the long-polling loop
//   - registry: bot records and lookups
//   - bootstrap: the startup sequence
//   - config: YAML, environment and keychain settings
//   - tg: shared Bot API types and errors
package tgbots
