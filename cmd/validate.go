package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-research/switch/internal/resolve"
	"github.com/agentic-research/switch/internal/schema"
)

var errInvalidSchema = errors.New("schema is not valid")

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check required fields and references of the schema",
	Long: `Check that the project fields are filled in and that no linked group
references itself. Links to missing groups are reported as warnings; they
resolve to nothing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := openSchema()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		failed := false

		var missing *schema.RequiredFieldsError
		if err := schema.CheckRequired(cfg); errors.As(err, &missing) {
			failed = true
			fmt.Fprintf(out, "missing: %s\n", strings.Join(missing.Fields, ", "))
		} else if err != nil {
			return err
		}

		rep := resolve.Check(cfg)
		for _, ref := range rep.Dangling {
			fmt.Fprintf(out, "warning: %s/%s links missing group %q\n", ref.Owner, ref.Entry, ref.Target)
		}
		for _, cycle := range rep.Cycles {
			failed = true
			fmt.Fprintf(out, "cycle: %s\n", strings.Join(cycle, " -> "))
		}

		if failed {
			return fmt.Errorf("%s: %w", path, errInvalidSchema)
		}
		fmt.Fprintf(out, "%s: ok\n", path)
		return nil
	},
}
