package install

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nodekit/pkg/config"
	"nodekit/pkg/installer"
	"nodekit/pkg/ledger"
)

// NewCommand builds the install subcommand.
func NewCommand() *cobra.Command {
	var opts installer.Options

	cmd := &cobra.Command{
		Use:   "install <version>",
		Short: "Install development headers for a Node.js version",
		Example: `  nodekit install 18.17.0
  nodekit install v20.1.0 --ensure
  nodekit install 21.0.0-nightly01 --tarball ./node-headers.tar.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			applySettings(&opts, settings)

			if opts.DevDir == "" {
				opts.DevDir, err = config.DefaultDevDir()
				if err != nil {
					return err
				}
			}
			opts.Progress = term.IsTerminal(int(os.Stderr.Fd()))

			resolved, err := installer.Install(c.Context(), args[0], opts)
			if err != nil {
				return err
			}

			recordEvent(c, ledger.ActionInstall, resolved, opts.DevDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Ensure, "ensure", false, "Skip the install when the version is already present and current")
	cmd.Flags().StringVar(&opts.Tarball, "tarball", "", "Path to a locally supplied headers archive")
	cmd.Flags().StringVar(&opts.NodeDir, "nodedir", "", "Directory of pre-existing Node.js dev files")
	cmd.Flags().StringVar(&opts.CAFile, "cafile", "", "PEM bundle of additional trusted certificates")
	cmd.Flags().StringVar(&opts.Proxy, "proxy", "", "Proxy URL for downloads")
	cmd.Flags().StringVar(&opts.DistURL, "disturl", "", "Node.js release mirror base URL")
	cmd.Flags().StringVar(&opts.DevDir, "devdir", "", "Base directory for installed header sets")

	return cmd
}

// applySettings fills options the flags left empty from the settings
// file.
func applySettings(opts *installer.Options, s config.Settings) {
	if opts.DevDir == "" {
		opts.DevDir = s.DevDir
	}
	if opts.DistURL == "" {
		opts.DistURL = s.DistURL
	}
	if opts.Proxy == "" {
		opts.Proxy = s.Proxy
	}
	if opts.CAFile == "" {
		opts.CAFile = s.CAFile
	}
}

func recordEvent(c *cobra.Command, action, version, devDir string) {
	l, err := ledger.Open()
	if err != nil {
		slog.Warn("failed to open install ledger", "err", err)
		return
	}
	defer l.Close()
	if err := l.Record(c.Context(), action, version, devDir); err != nil {
		slog.Warn("failed to record install event", "err", err)
	}
}
