package cmd

import (
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
)

var (
	greenCheck = color.GreenString("✓")
	redCross   = color.RedString("✗")
)

// BeQuietError signals that the command already reported its failure and
// Execute should only set the exit code.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "command failed"
}

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

func faint(s string) string {
	return color.New(color.Faint).Sprint(s)
}

func logSuccess(format string, args ...any) {
	log.Info().Msgf(greenCheck+" "+format, args...)
}

func logError(err error, msg string) error {
	log.Error().Msgf("%s %s", redCross, msg)
	log.Error().Msgf("error: %v", err)
	return BeQuietError{}
}

func applyTableFormat(t table.Writer) {
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
