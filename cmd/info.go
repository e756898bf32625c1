package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcinmaslon/wolf-comm/internal/buildinfo"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about this wolf-comm build",
	Run: func(cmd *cobra.Command, args []string) {
		printInfo(buildinfo.GetBuildInfo())
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printInfo(info buildinfo.Info) {
	fmt.Println(bold("\n── wolf-comm Build Information ──"))
	fmt.Printf("  %s:    %s\n", faint("Version"), info.Version)
	fmt.Printf("  %s:     %s\n", faint("Commit"), info.CommitHash)
	fmt.Printf("  %s:     %s\n", faint("Source"), info.About)
}
