package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentic-research/switch/internal/settings"
)

var (
	recentPrune bool
	recentAdd   string
)

func init() {
	recentCmd.Flags().BoolVar(&recentPrune, "prune", false, "Drop entries whose file no longer exists")
	recentCmd.Flags().StringVar(&recentAdd, "add", "", "Record a path as recently used")
	rootCmd.AddCommand(recentCmd)
}

var recentCmd = &cobra.Command{
	Use:       "recent [configs|files]",
	Short:     "List recently used configs or files",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{string(settings.KindConfigs), string(settings.KindFiles)},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := settings.KindConfigs
		if len(args) == 1 {
			kind = settings.Kind(args[0])
		}
		out := cmd.OutOrStdout()

		if recentAdd != "" {
			p, err := absPath(recentAdd)
			if err != nil {
				return err
			}
			if err := store.Touch(kind, p); err != nil {
				return err
			}
		}
		if recentPrune {
			dropped, err := store.Prune(kind, func(p string) bool {
				_, err := os.Stat(p)
				return err == nil
			})
			if err != nil {
				return err
			}
			for _, p := range dropped {
				logger.WithField("path", p).Info("removed missing recent entry")
			}
		}

		paths, err := store.Recent(kind)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(out, p)
		}
		return nil
	},
}
