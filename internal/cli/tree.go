package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kintreeapp/kintree/pkg/person"
	"github.com/kintreeapp/kintree/pkg/tree"
)

// newTreeCmd creates the tree command for inspecting the resolved hierarchy.
func newTreeCmd() *cobra.Command {
	var (
		interactive bool
		rtl         bool
	)

	cmd := &cobra.Command{
		Use:   "tree [persons.json]",
		Short: "Print or interactively browse the resolved hierarchy",
		Long: `Print or interactively browse the resolved hierarchy.

Without flags, the command prints the tree as indented text with sibling
ordering applied. With --interactive, a terminal browser opens instead:
arrow keys move through the generations, enter expands details for the
selected person.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args[0], interactive, rtl)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the tree in the terminal")
	cmd.Flags().BoolVar(&rtl, "rtl", false, "apply right-to-left sibling ordering")

	return cmd
}

// runTree builds the hierarchy and prints or browses it.
func runTree(input string, interactive, rtl bool) error {
	col, err := person.ReadCollectionFile(input)
	if err != nil {
		return fmt.Errorf("load collection %s: %w", input, err)
	}
	if len(col.Persons) == 0 {
		printInfo("Collection is empty")
		return nil
	}

	t, err := tree.Build(col.Persons)
	if err != nil {
		return fmt.Errorf("build hierarchy: %w", err)
	}
	t.SortSiblings(rtl)

	if interactive {
		model := newTreeBrowserModel(t)
		_, err := tea.NewProgram(model).Run()
		return err
	}

	printTree(t)
	for _, ex := range t.Excluded {
		printWarning("excluded %s (%s)", ex.ID, ex.Reason)
	}
	return nil
}

// printTree writes the hierarchy as indented text, one person per line.
func printTree(t *tree.Tree) {
	t.Walk(func(n *tree.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		label := displayName(n.Record)
		if label == n.Record.ID {
			fmt.Println(indent + StyleValue.Render(label))
			return
		}
		fmt.Println(indent + StyleValue.Render(label) + " " + StyleDim.Render(n.Record.ID))
	})
}

// displayName returns the person's name attribute, falling back to the ID.
func displayName(r person.Record) string {
	if name, ok := r.Attr("name").(string); ok && name != "" {
		return name
	}
	return r.ID
}
