package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marcinmaslon/wolf-comm/internal/buildinfo"
	"github.com/marcinmaslon/wolf-comm/internal/logging"
)

const (
	CredentialsKey  = "credentials"
	BaseURLKey      = "base_url"
	TokenCacheKey   = "token_cache"
	ContextCacheKey = "context_cache"
	ExpertModeKey   = "expert"
)

var f = NewFactory()

var rootCmd = &cobra.Command{
	Use:   "wolf",
	Short: fmt.Sprintf("Wolf Smartset client (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `wolf polls the Wolf Smartset cloud portal for heating-system
parameters and publishes current values, e.g. to an MQTT broker.
Credentials come from a JSON file owned by the deployment.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(nil)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var quiet BeQuietError
		if !errors.As(err, &quiet) {
			log.Error().Err(err).Msg("execution failed")
		}
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringP("credentials", "c", "credentials.json",
		"Path to the JSON credentials file")
	_ = viper.BindPFlag(CredentialsKey, rootCmd.PersistentFlags().Lookup("credentials"))

	rootCmd.PersistentFlags().String("base-url", "", "Override the portal API origin (mainly for testing)")
	_ = viper.BindPFlag(BaseURLKey, rootCmd.PersistentFlags().Lookup("base-url"))

	rootCmd.PersistentFlags().String("token-cache", "", "Path to the token cache file (default is $HOME/.wolf_comm_token_cache.json)")
	_ = viper.BindPFlag(TokenCacheKey, rootCmd.PersistentFlags().Lookup("token-cache"))

	rootCmd.PersistentFlags().String("context-cache", "system_context_cache.json",
		"Path to the system context cache file")
	_ = viper.BindPFlag(ContextCacheKey, rootCmd.PersistentFlags().Lookup("context-cache"))

	rootCmd.PersistentFlags().Bool("expert", false, "Discover parameters via recursive extraction instead of the guided menus")
	_ = viper.BindPFlag(ExpertModeKey, rootCmd.PersistentFlags().Lookup("expert"))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(logging.LevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(logging.FormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	viper.SetEnvPrefix("WOLF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
