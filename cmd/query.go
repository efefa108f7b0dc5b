package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/agentic-research/switch/internal/schema"
)

func init() {
	rootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query <jsonpath>",
	Short: "Select parts of the schema with a JSONPath expression",
	Example: `  switch query '$.BASEFOLDERS'
  switch query '$.LINKED03.objs'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := openSchema()
		if err != nil {
			return err
		}
		results, err := schema.Query(cfg, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}
