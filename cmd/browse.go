package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentic-research/switch/internal/browse"
	"github.com/agentic-research/switch/internal/materialize"
	"github.com/agentic-research/switch/internal/schema"
)

var (
	browseCreate    bool
	browseValidOnly bool
	browseMove      string
	browseCopy      string
	browseDelete    bool
)

func init() {
	browseCmd.Flags().BoolVar(&browseCreate, "create", false, "Create the project root and root folders when missing")
	browseCmd.Flags().BoolVar(&browseValidOnly, "valid", false, "Only list folders and files with a project extension")
	browseCmd.Flags().StringVar(&browseMove, "move", "", "Move this file or folder into the listed folder")
	browseCmd.Flags().StringVar(&browseCopy, "copy", "", "Copy this file or folder into the listed folder")
	browseCmd.Flags().BoolVar(&browseDelete, "delete", false, "Delete the given file or folder instead of listing it")
	rootCmd.AddCommand(browseCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse [root[/sub/dir] | path]",
	Short: "List the files of the project",
	Long: `List a folder of the project, folders first. Files whose extension is one
of the project's are marked with "*". "root" or no argument lists the
project root; a root folder name lists that root.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := openSchema()
		if err != nil {
			return err
		}
		if err := absProject(cfg); err != nil {
			return err
		}
		fsys := hostFS()
		b := browse.New(fsys, cfg, browse.WithLogger(logger))

		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		dir, err := browseDir(b, cfg, arg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if browseDelete {
			if err := b.Delete(dir); err != nil {
				return err
			}
			fmt.Fprintf(out, "deleted %s\n", dir)
			return nil
		}
		if browseMove != "" || browseCopy != "" {
			src, op := browseMove, b.Move
			if src == "" {
				src, op = browseCopy, b.Copy
			}
			abs, err := absPath(src)
			if err != nil {
				return err
			}
			dst, err := op(abs, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, dst)
			return nil
		}

		if _, err := fsys.Stat(dir); errors.Is(err, fs.ErrNotExist) && browseCreate {
			m := materialize.New(fsys, materialize.WithLogger(logger))
			if err := m.EnsureProject(cfg); err != nil {
				return err
			}
			logger.WithField("path", cfg.RootPath()).Info("project folders created")
		}
		entries, err := b.List(dir)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, e := range entries {
			if browseValidOnly && !e.Dir && !e.Valid {
				continue
			}
			mark, name := " ", e.Name
			switch {
			case e.Dir:
				name += "/"
			case e.Valid:
				mark = "*"
			}
			fmt.Fprintf(tw, "%s %s\t%d\t%s\n", mark, name, e.Size, e.ModTime.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

// browseDir maps "root", a root name or root/sub/dir onto the project;
// anything else is a filesystem path.
func browseDir(b *browse.Browser, cfg *schema.Config, arg string) (string, error) {
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg), nil
	}
	head, rest, _ := strings.Cut(filepath.ToSlash(arg), "/")
	if head == "" || head == browse.ProjectRoot || cfg.HasRoot(head) {
		base, err := b.RootPath(head)
		if err != nil {
			return "", err
		}
		return filepath.Join(base, filepath.FromSlash(rest)), nil
	}
	return absPath(arg)
}
