package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/marcinmaslon/wolf-comm/internal/core"
	"github.com/marcinmaslon/wolf-comm/internal/logging"
	"github.com/marcinmaslon/wolf-comm/internal/poll"
	"github.com/marcinmaslon/wolf-comm/internal/publish"
	"github.com/marcinmaslon/wolf-comm/pkg/smartset"
)

var watchInterval int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the portal on a fixed interval and publish via MQTT",
	Long: `Fetches current values every interval and publishes them to the
configured MQTT broker. Write requests arriving on ` + publish.SetTopic + `
are forwarded to the portal. The process runs in the foreground until it
is terminated; restarts are the service manager's job.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			return err
		}
		broker, err := cfg.MQTT.Broker()
		if err != nil {
			return fmt.Errorf("watch mode requires an MQTT url in the credentials file: %w", err)
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		fl, err := f.GetFilter("")
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// discover once per run; the catalog is stable for the process lifetime
		system, err := firstSystem(ctx, cli)
		if err != nil {
			return logError(err, "failed to fetch system list")
		}
		params, err := cli.FetchParameters(ctx, system)
		if err != nil {
			return logError(err, "failed to fetch parameters")
		}
		params = fl.Apply(params)
		log.Info().Str("system", system.Name).Int("parameters", len(params)).Msg("watching")

		pub, err := publish.Connect(broker)
		if err != nil {
			return logError(err, "failed to connect to mqtt broker")
		}
		defer pub.Close()

		if err := pub.ListenSet(setHandler(ctx, cli, system, params)); err != nil {
			return logError(err, "failed to subscribe for write requests")
		}

		interval := f.RefreshInterval(watchInterval)
		runner := poll.NewRunner("status-refresh", interval, func(ctx context.Context, logger logging.InternalLogger) error {
			values, err := cli.FetchValues(ctx, system, params)
			if err != nil && len(values) == 0 {
				return err
			}
			if err != nil {
				logger.Warn("some bundles failed: %v", err)
			}

			status := publish.BuildStatus(params, valuesToList(values))
			if err := pub.PublishStatus(status); err != nil {
				return err
			}
			logger.Info("published %d values", len(values))
			return nil
		})

		log.Info().Dur("interval", interval).Msg("starting refresh loop")
		runner.Run(ctx)

		status := runner.Status()
		log.Info().
			Str("task", status.Name).
			Time("last_run", status.LastRun).
			Str("last_result", status.LastResult).
			Msg("shutting down")
		if status.LastResult != "" && status.LastResult != "success" {
			// replay the failed cycle's log so the exit cause survives in
			// the journal
			for _, entry := range runner.Logs() {
				log.Warn().
					Time("at", entry.Time).
					Str("cycle_level", entry.Level).
					Msg(entry.Message)
			}
		}
		return nil
	},
}

// setHandler forwards MQTT write requests to the portal. It runs on the
// broker client's goroutine, so failures are logged, not returned.
func setHandler(ctx context.Context, cli *smartset.Client, system core.System, params []core.Parameter) publish.SetHandler {
	return func(name, value string) {
		var target *core.Parameter
		for i := range params {
			if params[i].Name == name {
				target = &params[i]
				break
			}
		}
		if target == nil {
			log.Warn().Str("parameter", name).Msg("write request for unknown parameter, skipping")
			return
		}

		if err := cli.WriteValue(ctx, system, *target, value); err != nil {
			var writeErr core.ParameterWriteError
			if errors.As(err, &writeErr) {
				log.Error().Err(err).Msg("write rejected")
				return
			}
			log.Error().Err(err).Msg("write failed")
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntVar(&watchInterval, "refresh-interval", 0,
		"Refresh interval in seconds (0 uses the credentials file or the 60s default)")
}
