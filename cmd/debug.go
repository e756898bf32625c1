package cmd

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:    "debug",
	Short:  "Debugging helpers",
	Hidden: true,
}

var debugGuiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Dump the raw GUI description document",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		system, err := firstSystem(cmd.Context(), cli)
		if err != nil {
			return logError(err, "failed to fetch system list")
		}
		doc, err := cli.FetchGuiDescription(cmd.Context(), system)
		if err != nil {
			return logError(err, "failed to fetch gui description")
		}

		spew.Dump(doc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugGuiCmd)
}
