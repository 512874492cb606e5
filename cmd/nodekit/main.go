package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"nodekit/cmd/nodekit/install"
	"nodekit/cmd/nodekit/list"
	"nodekit/cmd/nodekit/remove"
	"nodekit/cmd/nodekit/selfupdate"
	"nodekit/pkg/version"
)

func main() {
	var verbose bool

	cmd := &cobra.Command{
		Use:     "nodekit",
		Short:   "nodekit - Node.js development headers installer",
		Version: version.Version(),
		PersistentPreRun: func(c *cobra.Command, args []string) {
			if verbose {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(install.NewCommand())
	cmd.AddCommand(remove.NewCommand())
	cmd.AddCommand(list.NewCommand())
	cmd.AddCommand(selfupdate.NewCommand())

	if err := cmd.Execute(); err != nil {
		slog.Error("error", "err", err)
		os.Exit(1)
	}
}
