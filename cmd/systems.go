package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var systemsCmd = &cobra.Command{
	Use:     "systems",
	Aliases: []string{"ls"},
	Short:   "List the heating systems visible to the account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		systems, err := cli.FetchSystemList(cmd.Context())
		if err != nil {
			return logError(err, "failed to fetch system list")
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "System ID", "Gateway ID"})
		for _, s := range systems {
			t.AppendRow(table.Row{bold(s.Name), s.ID, s.GatewayID})
		}
		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(systemsCmd)
}
