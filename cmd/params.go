package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var paramsFilter string

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List the discovered parameter catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		fl, err := f.GetFilter(paramsFilter)
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
		params = fl.Apply(params)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "Value ID", "Bundle", "Unit", "Access", "Group"})
		for _, p := range params {
			access := "rw"
			if p.ReadOnly {
				access = "ro"
			}
			t.AppendRow(table.Row{bold(p.Name), p.ValueID, p.BundleID, string(p.Unit), access, p.Parent})
		}
		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(paramsCmd)

	paramsCmd.Flags().StringVar(&paramsFilter, "filter", "",
		`Filter expression, e.g. 'Parameter.Unit == "temperature"' (overrides the credentials file)`)
}
