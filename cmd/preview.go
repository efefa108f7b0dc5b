package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/switch/api"
	"github.com/agentic-research/switch/internal/schema"
	"github.com/agentic-research/switch/internal/tree"
)

var (
	previewJSON bool
	previewRoot string
)

func init() {
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "Print the topology as JSON")
	previewCmd.Flags().StringVar(&previewRoot, "root", "", "Root folder to show the asset under (default: first root)")
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview [asset-name]",
	Short: "Show the folders a new asset would get",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := openSchema()
		if err != nil {
			return err
		}
		if err := schema.CheckRequired(cfg); err != nil {
			return err
		}
		tr, err := tree.FromConfig(cfg, tree.ModePreview, tree.WithLogger(logger))
		if err != nil {
			return err
		}
		asset := ""
		if len(args) == 1 {
			asset = args[0]
		}
		topo, err := tr.Preview(asset)
		if err != nil {
			return err
		}
		if previewJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(topo)
		}
		return printTopology(cmd.OutOrStdout(), topo, previewRoot)
	},
}

// printTopology draws the project root, its roots and the asset folders
// under the selected root.
func printTopology(w io.Writer, topo api.Topology, under string) error {
	if under == "" && len(topo.Roots) > 0 {
		under = topo.Roots[0]
	}
	found := false
	fmt.Fprintln(w, topo.Root)
	for _, r := range topo.Roots {
		fmt.Fprintf(w, "  %s\n", r)
		if r != under {
			continue
		}
		found = true
		fmt.Fprintf(w, "    %s\n", topo.Asset)
		printNodes(w, topo.Nodes, 3)
	}
	if !found && under != "" {
		return fmt.Errorf("root %q not found", under)
	}
	return nil
}

func printNodes(w io.Writer, nodes []api.Node, indent int) {
	api.Walk(nodes, func(path []string, n api.Node) bool {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", indent+len(path)-1), n.Name)
		return true
	})
}
