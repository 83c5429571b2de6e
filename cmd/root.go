// Package cmd defines the CLI commands for the roster-crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster-crawler",
		Short: "A bounded-concurrency crawler for sports roster sites.",
		Long: `roster-crawler walks a league site from configured seed pages,
following team roster pages to player profiles. Fetches run under a fixed
concurrency cap and a shared rate limit; player records land in the
configured store and per-page outcomes in the configured sink.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./config.yaml)")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
