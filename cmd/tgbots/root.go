package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "TGBOTS"

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tgbots",
		Short:        "Connect and run several Telegram bots",
		SilenceUsage: true,
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Settings file path (YAML, optional).")
	cmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "Dotenv files loaded before reading the environment; missing files are skipped.")
	cmd.PersistentFlags().String("log-level", "", "Logging level: debug|info|warn|error.")
	cmd.PersistentFlags().String("log-format", "text", "Logging format: text|json.")
	cmd.PersistentFlags().Bool("log-add-source", false, "Include source file:line in logs.")
	cmd.PersistentFlags().String("mode", "", "Delivery mode: WEBHOOK|POLLING (overrides settings).")
	cmd.PersistentFlags().String("webhook-site", "", "Public base URL for webhooks (overrides settings).")
	cmd.PersistentFlags().String("base-url", "", "Bot API server URL (overrides settings).")
	cmd.PersistentFlags().Bool("disable-setup", false, "Build bots without registering webhooks or updaters.")
	cmd.PersistentFlags().Bool("log-updates", false, "Log every update each bot receives.")

	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("env_file", cmd.PersistentFlags().Lookup("env-file"))
	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.add_source", cmd.PersistentFlags().Lookup("log-add-source"))
	_ = viper.BindPFlag("mode", cmd.PersistentFlags().Lookup("mode"))
	_ = viper.BindPFlag("webhook_site", cmd.PersistentFlags().Lookup("webhook-site"))
	_ = viper.BindPFlag("base_url", cmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("disable_setup", cmd.PersistentFlags().Lookup("disable-setup"))
	_ = viper.BindPFlag("log_updates", cmd.PersistentFlags().Lookup("log-updates"))

	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)

	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newPollingCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initConfig() {
	// Dotenv values never override variables already in the environment.
	for _, path := range viper.GetStringSlice("env_file") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", path, err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}
