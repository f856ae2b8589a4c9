package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prilive-com/tgbots/config"
)

func newPollingCmd() *cobra.Command {
	var username, token string
	cmd := &cobra.Command{
		Use:   "polling",
		Short: "Run the long-polling loop of one bot until interrupted",
		Long: "Connects every configured bot in POLLING mode, then runs the updater of the bot\n" +
			"named by --username (a username or configured id) or --token. Without either,\n" +
			"the default bot is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username != "" && token != "" {
				return errors.New("use either --username or --token")
			}

			s, err := settingsFromViper()
			if err != nil {
				return err
			}
			s.Mode = config.ModePolling
			s.DisableSetup = false

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub, logger, err := startHub(ctx, cmd, *s)
			if err != nil {
				return err
			}
			defer hub.Close()

			identifier := username
			if token != "" {
				identifier = token
			}
			u, err := hub.Registry().Updater(identifier, true)
			if err != nil {
				return err
			}

			logger.Info("polling, press Ctrl+C to stop", "bot", u.Bot().Token().Fingerprint(), "username", u.Bot().Username())
			if err := u.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("polling stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Bot username or configured id.")
	cmd.Flags().StringVar(&token, "token", "", "Bot token.")
	return cmd
}
