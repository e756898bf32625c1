package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the Wolf Smartset portal",
	Long: `Runs the full login handshake regardless of any cached token and
persists the result to the token cache, so subsequent commands start
without a handshake.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Info().Msg("Authenticating...")
		token, err := cli.Login(cmd.Context())
		if err != nil {
			return logError(err, "login failed")
		}

		logSuccess("authenticated as %s (token %s, expires %s)",
			bold(token.Username),
			truncate(token.AccessToken, 12),
			token.ExpiresAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
