package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentic-research/switch/internal/archive"
	"github.com/agentic-research/switch/internal/settings"
)

func init() {
	archiveCmd.AddCommand(archiveFolderCmd)
	archiveCmd.AddCommand(archiveFileCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(restoreCmd)
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Zip a folder or file of the project",
}

var archiveFolderCmd = &cobra.Command{
	Use:   "folder <dir> <archive.zip>",
	Short: "Zip a folder, keeping its name as the top-level entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runArchive(cmd, args, (*archive.Archiver).Folder)
	},
}

var archiveFileCmd = &cobra.Command{
	Use:   "file <file> <archive.zip>",
	Short: "Zip a single file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runArchive(cmd, args, (*archive.Archiver).File)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <archive.zip> <dir>",
	Short: "Extract an archive into a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := absPath(args[0])
		if err != nil {
			return err
		}
		dir, err := absPath(args[1])
		if err != nil {
			return err
		}
		a := archive.New(hostFS(), archive.WithLogger(logger))
		if err := a.Restore(src, dir); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dir)
		return nil
	},
}

func runArchive(cmd *cobra.Command, args []string, op func(*archive.Archiver, string, string) error) error {
	src, err := absPath(args[0])
	if err != nil {
		return err
	}
	dst, err := absPath(args[1])
	if err != nil {
		return err
	}
	a := archive.New(hostFS(), archive.WithLogger(logger))
	if err := op(a, src, dst); err != nil {
		return err
	}
	if err := store.Touch(settings.KindFiles, dst); err != nil {
		logger.WithError(err).Warn("could not record recent file")
	}
	fmt.Fprintln(cmd.OutOrStdout(), dst)
	return nil
}
