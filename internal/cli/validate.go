package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kintreeapp/kintree/pkg/layout"
	"github.com/kintreeapp/kintree/pkg/person"
)

// newValidateCmd creates the validate command for checking person
// collections without producing output files.
func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [persons.json]",
		Short: "Check a person collection and report diagnostics",
		Long: `Check a person collection and report diagnostics.

Validation runs the full layout engine and prints every diagnostic it
emits: missing or multiple roots, cyclic parent references, orphaned
records, and unreachable descendants. Malformed input (bad JSON, empty or
duplicate IDs) fails outright.

With --strict, any diagnostic at all makes the command exit non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat any diagnostic as a failure")

	return cmd
}

// runValidate computes a layout and reports on the result.
func runValidate(input string, strict bool) error {
	col, err := person.ReadCollectionFile(input)
	if err != nil {
		return fmt.Errorf("load collection %s: %w", input, err)
	}

	res, err := layout.Compute(col.Persons, layout.Options{})
	if err != nil {
		return fmt.Errorf("invalid collection: %w", err)
	}

	for _, d := range res.Diagnostics {
		switch d.Code {
		case layout.CodeNoRoot, layout.CodeMultipleRoots, layout.CodeCycle:
			printError("%s: %s", d.Code, d.Detail)
		default:
			printWarning("%s: %s (%s)", d.Code, d.Detail, d.PersonID)
		}
	}

	if len(res.Nodes) == 0 && len(col.Persons) > 0 {
		return fmt.Errorf("no layout produced: %d diagnostic(s)", len(res.Diagnostics))
	}
	if strict && len(res.Diagnostics) > 0 {
		return fmt.Errorf("collection has %d diagnostic(s)", len(res.Diagnostics))
	}

	printSuccess("Collection is valid")
	printDetail("%d records, %d placed nodes, %d connections", len(col.Persons), len(res.Nodes), len(res.Connections))
	return nil
}
