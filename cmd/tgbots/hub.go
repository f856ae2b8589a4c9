package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prilive-com/tgbots"
	"github.com/prilive-com/tgbots/bootstrap"
	"github.com/prilive-com/tgbots/config"
)

// settingsFromViper loads the settings file and environment, then applies
// command-line overrides.
func settingsFromViper() (*config.Settings, error) {
	s, err := config.Load(strings.TrimSpace(viper.GetString("config")))
	if err != nil {
		return nil, err
	}
	if m := strings.TrimSpace(viper.GetString("mode")); m != "" {
		if s.Mode, err = config.ParseMode(m); err != nil {
			return nil, err
		}
	}
	if site := strings.TrimSpace(viper.GetString("webhook_site")); site != "" {
		s.WebhookSite = site
	}
	if u := strings.TrimSpace(viper.GetString("base_url")); u != "" {
		s.BaseURL = u
	}
	if viper.GetBool("disable_setup") {
		s.DisableSetup = true
	}
	return s, s.Validate()
}

// startHub builds the Hub for s and runs startup. The caller closes the Hub.
func startHub(ctx context.Context, cmd *cobra.Command, s config.Settings) (*tgbots.Hub, *slog.Logger, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), loggerConfigFromViper())
	if err != nil {
		return nil, nil, err
	}

	var modules []bootstrap.Module
	if viper.GetBool("log_updates") {
		modules = append(modules, updateLogModule(logger))
	}

	hub, err := tgbots.New(s, tgbots.WithLogger(logger), tgbots.WithModules(modules...))
	if err != nil {
		return nil, nil, err
	}
	if err := hub.Start(ctx); err != nil {
		_ = hub.Close()
		return nil, nil, err
	}
	return hub, logger, nil
}
