package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentic-research/switch/internal/schema"
)

var (
	initForce       bool
	initProjectName string
	initProjectPath string
	initConfigRoot  string
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config")
	initCmd.Flags().StringVar(&initProjectName, "name", "", "Project name")
	initCmd.Flags().StringVar(&initProjectPath, "project-path", "", "Folder the project lives in")
	initCmd.Flags().StringVar(&initConfigRoot, "root", "", "Project root folder name")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init <config-path>",
	Short: "Write the starter folder schema",
	Long: `Write the starter folder schema to config-path. A bare name is placed in
the configs directory and gets a .json extension when it has none.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath = args[0]
		path, err := schemaFile()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s: %w (use --force to overwrite)", path, fs.ErrExist)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		cfg := schema.DefaultConfig()
		if initProjectName != "" {
			cfg.ProjectName = initProjectName
		}
		if initProjectPath != "" {
			cfg.ProjectPath = initProjectPath
		}
		if initConfigRoot != "" {
			cfg.ConfigRoot = initConfigRoot
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		saved, err := schema.Save(path, cfg)
		if err != nil {
			return err
		}
		if err := store.SetLastOpened(saved); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), saved)
		return nil
	},
}
