package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/switch/internal/materialize"
	"github.com/agentic-research/switch/internal/schema"
)

var createDryRun bool

func init() {
	createCmd.Flags().BoolVar(&createDryRun, "dry-run", false, "Print the asset path without creating anything")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create <asset-type> <asset-name>",
	Short: "Create the folders of a new asset",
	Long: `Create projectPath/configRoot/<asset-type>/<asset-name> and the resolved
base folder structure below it. Existing folders are left untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := openSchema()
		if err != nil {
			return err
		}
		if err := schema.CheckRequired(cfg); err != nil {
			return err
		}
		if err := absProject(cfg); err != nil {
			return err
		}

		if createDryRun {
			dir, err := materialize.AssetPath(cfg, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		}

		m := materialize.New(hostFS(), materialize.WithLogger(logger))
		dir, err := m.CreateAsset(cfg, args[0], args[1])
		if err != nil {
			return err
		}
		logger.WithField("path", dir).Info("asset created")
		fmt.Fprintln(cmd.OutOrStdout(), dir)
		return nil
	},
}
