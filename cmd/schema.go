package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/switch/internal/schema"
	"github.com/agentic-research/switch/internal/tree"
)

func init() {
	schemaCmd.AddCommand(schemaTreeCmd)
	schemaCmd.AddCommand(schemaAddCmd)
	schemaCmd.AddCommand(schemaRemoveCmd)
	schemaCmd.AddCommand(schemaRenameCmd)
	schemaCmd.AddCommand(schemaRenameGroupCmd)
	schemaCmd.AddCommand(schemaAddGroupCmd)
	schemaCmd.AddCommand(schemaLinkCmd)
	schemaCmd.AddCommand(schemaCandidatesCmd)
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect and edit the folder schema",
	Long: `Inspect and edit the folder schema as a tree.

Folders are addressed as:
  ""                                  the project root
  roots/<root>                        a root folder
  base/<folder>[/<link>]              a base folder and its links
  linked/<group>[/<entry>[/<link>]]   a linked group, its entries and links

Edits are saved back to the schema file.`,
}

var schemaTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the editable schema tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := openSchema()
		if err != nil {
			return err
		}
		tr, err := tree.FromConfig(cfg, tree.ModeEdit, tree.WithLogger(logger))
		if err != nil {
			return err
		}
		printTree(cmd.OutOrStdout(), tr)
		return nil
	},
}

var schemaAddCmd = &cobra.Command{
	Use:   "add <parent> <name>",
	Short: "Add a folder, base folder, entry or link under parent",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSchema(func(tr *tree.Tree) error {
			parent, err := tr.Find(args[0])
			if err != nil {
				return err
			}
			_, err = tr.AddFolder(parent, args[1])
			return err
		})
	},
}

var schemaRemoveCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Remove a folder, link or linked group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSchema(func(tr *tree.Tree) error {
			n, err := tr.Find(args[0])
			if err != nil {
				return err
			}
			return tr.Remove(n)
		})
	},
}

var schemaRenameCmd = &cobra.Command{
	Use:   "rename <path> <new-name>",
	Short: "Rename a folder",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSchema(func(tr *tree.Tree) error {
			n, err := tr.Find(args[0])
			if err != nil {
				return err
			}
			return tr.Rename(n, args[1])
		})
	},
}

var schemaRenameGroupCmd = &cobra.Command{
	Use:   "rename-group <old> <new>",
	Short: "Rename a linked group and every link to it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSchema(func(tr *tree.Tree) error {
			return tr.RenameGroup(args[0], args[1])
		})
	},
}

var schemaAddGroupCmd = &cobra.Command{
	Use:   "add-group <name>",
	Short: "Create an empty linked group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSchema(func(tr *tree.Tree) error {
			_, err := tr.AddGroup(args[0])
			return err
		})
	},
}

var schemaLinkCmd = &cobra.Command{
	Use:   "link <path> <group>",
	Short: "Link an existing group below a base folder or linked entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSchema(func(tr *tree.Tree) error {
			n, err := tr.Find(args[0])
			if err != nil {
				return err
			}
			_, err = tr.Link(n, args[1])
			return err
		})
	},
}

var schemaCandidatesCmd = &cobra.Command{
	Use:   "candidates <path>",
	Short: "List the groups that can be linked below path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := openSchema()
		if err != nil {
			return err
		}
		tr, err := tree.FromConfig(cfg, tree.ModeEdit, tree.WithLogger(logger))
		if err != nil {
			return err
		}
		n, err := tr.Find(args[0])
		if err != nil {
			return err
		}
		names, err := tr.LinkCandidates(n)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

// editSchema applies edit to the tree of the selected schema and saves the
// result in place.
func editSchema(edit func(*tree.Tree) error) error {
	cfg, path, err := openSchema()
	if err != nil {
		return err
	}
	tr, err := tree.FromConfig(cfg, tree.ModeEdit, tree.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := edit(tr); err != nil {
		return err
	}
	out, err := tr.ToConfig()
	if err != nil {
		return err
	}
	if err := schema.CheckRequired(out); err != nil {
		return err
	}
	if _, err := schema.Save(path, out); err != nil {
		return err
	}
	logger.WithField("config", path).Info("schema saved")
	return nil
}

func printTree(w io.Writer, tr *tree.Tree) {
	tr.Walk(func(depth int, n *tree.Node) bool {
		label := n.Name
		switch {
		case n.Kind == tree.DynamicPlaceholder && n.Parent == nil:
			label = "(base folders)"
		case n.Kind == tree.LinkedGroupRoot:
			label = "[" + n.Name + "]"
		case n.IsLink() || (n.Kind == tree.PlainFolder && n.IsTerminal()):
			label = "-> " + n.Name
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), label)
		return true
	})
}
