package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <parameter> <value>",
	Short: "Write one parameter value to the portal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, value := args[0], args[1]

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		system, err := firstSystem(cmd.Context(), cli)
		if err != nil {
			return logError(err, "failed to fetch system list")
		}
		params, err := cli.FetchParameters(cmd.Context(), system)
		if err != nil {
			return logError(err, "failed to fetch parameters")
		}

		for _, p := range params {
			if p.Name != name {
				continue
			}
			if err := cli.WriteValue(cmd.Context(), system, p, value); err != nil {
				return logError(err, fmt.Sprintf("failed to set %q", name))
			}
			logSuccess("set %s to %s", bold(name), bold(value))
			return nil
		}
		return fmt.Errorf("parameter %q not found in the catalog", name)
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
