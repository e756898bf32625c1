package cmd

import (
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/marcinmaslon/wolf-comm/internal/publish"
)

var (
	statusFilter  string
	statusPublish bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Fetch current values once and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		fl, err := f.GetFilter(statusFilter)
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

		values, err := cli.FetchValues(cmd.Context(), system, params)
		if err != nil && len(values) == 0 {
			return logError(err, "failed to fetch values")
		}
		if err != nil {
			// partial result: report the failed bundles, render the rest
			log.Warn().Err(err).Msg("some bundles failed")
		}

		sorted := make([]int, 0, len(params))
		for i := range params {
			sorted = append(sorted, i)
		}
		sort.SliceStable(sorted, func(a, b int) bool {
			if params[sorted[a]].Parent != params[sorted[b]].Parent {
				return params[sorted[a]].Parent < params[sorted[b]].Parent
			}
			return params[sorted[a]].Name < params[sorted[b]].Name
		})

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Group", "Parameter", "Value", "State"})
		for _, i := range sorted {
			p := params[i]
			v, ok := values[p.ValueID]
			if !ok {
				continue
			}
			state := greenCheck
			if v.State != "" && v.State != "OK" {
				state = redCross + " " + v.State
			}
			t.AppendRow(table.Row{p.Parent, bold(p.Name), p.FormatValue(v.Value), state})
		}
		applyTableFormat(t)
		t.Render()

		if statusPublish {
			cfg, err := f.LoadConfig()
			if err != nil {
				return err
			}
			broker, err := cfg.MQTT.Broker()
			if err != nil {
				return logError(err, "mqtt publishing requested but not configured")
			}
			pub, err := publish.Connect(broker)
			if err != nil {
				return logError(err, "failed to connect to mqtt broker")
			}
			defer pub.Close()

			valueList := valuesToList(values)
			if err := pub.PublishStatus(publish.BuildStatus(params, valueList)); err != nil {
				return logError(err, "failed to publish status")
			}
			logSuccess("published %d values to %s", len(valueList), publish.StatusTopic)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusFilter, "filter", "",
		"Filter expression (overrides the credentials file)")
	statusCmd.Flags().BoolVar(&statusPublish, "publish", false,
		"Also publish the fetched status via MQTT")
}
