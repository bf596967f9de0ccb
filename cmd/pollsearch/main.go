package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pollsearch/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	env      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "pollsearch",
		Short:        "Search, sort and page poll results",
		Long:         "pollsearch serves the poll results widget over HTTP, in the terminal, or as one-shot queries.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "configuration environment (reads config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level: debug, info, warn, error")

	cmd.AddCommand(
		newServeCmd(opts),
		newBrowseCmd(opts),
		newSearchCmd(opts),
		newSeedCmd(opts),
		newVersionCmd(),
	)
	return cmd
}
