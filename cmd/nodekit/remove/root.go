package remove

import (
	"log/slog"

	"github.com/spf13/cobra"

	"nodekit/pkg/config"
	"nodekit/pkg/installer"
	"nodekit/pkg/ledger"
)

// NewCommand builds the remove subcommand.
func NewCommand() *cobra.Command {
	var devDir string

	cmd := &cobra.Command{
		Use:   "remove <version>",
		Short: "Remove the installed headers for a Node.js version",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			if devDir == "" {
				devDir = settings.DevDir
			}
			if devDir == "" {
				devDir, err = config.DefaultDevDir()
				if err != nil {
					return err
				}
			}

			if err := installer.Remove(devDir, args[0]); err != nil {
				return err
			}

			if l, err := ledger.Open(); err == nil {
				defer l.Close()
				if err := l.Record(c.Context(), ledger.ActionRemove, args[0], devDir); err != nil {
					slog.Warn("failed to record remove event", "err", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&devDir, "devdir", "", "Base directory for installed header sets")
	return cmd
}
