package list

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"nodekit/pkg/config"
	"nodekit/pkg/ledger"
	"nodekit/pkg/semver"
)

// NewCommand builds the list subcommand.
func NewCommand() *cobra.Command {
	var devDir string
	var history bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed header sets",
		RunE: func(c *cobra.Command, args []string) error {
			if history {
				return printHistory(c)
			}

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
			return printInstalled(c, devDir)
		},
	}

	cmd.Flags().StringVar(&devDir, "devdir", "", "Base directory for installed header sets")
	cmd.Flags().BoolVar(&history, "history", false, "Show the install/remove history instead")
	return cmd
}

func printInstalled(c *cobra.Command, devDir string) error {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var versions []semver.SemVer
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sv, err := semver.Parse(entry.Name())
		if err != nil {
			continue
		}
		versions = append(versions, sv)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].Less(versions[j]) })

	for _, v := range versions {
		fmt.Fprintln(c.OutOrStdout(), v.Normalized())
	}
	return nil
}

func printHistory(c *cobra.Command) error {
	l, err := ledger.Open()
	if err != nil {
		return err
	}
	defer l.Close()

	events, err := l.List(c.Context())
	if err != nil {
		return err
	}
	for _, e := range events {
		fmt.Fprintf(c.OutOrStdout(), "%s  %-8s %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Version)
	}
	return nil
}
