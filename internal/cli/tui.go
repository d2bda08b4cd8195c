package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kintreeapp/kintree/pkg/tree"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TreeBrowserModel - Interactive hierarchy browser
// =============================================================================

// treeRow is one flattened line of the hierarchy: the node plus the depth it
// sits at, so the view can indent without re-walking the tree.
type treeRow struct {
	node  *tree.Node
	depth int
}

// TreeBrowserModel is the bubbletea model for browsing a built hierarchy.
// The tree is flattened to rows in display order (preorder, siblings
// already sorted); navigation moves a cursor over the rows and enter
// toggles a detail pane for the selected person.
type TreeBrowserModel struct {
	Rows     []treeRow
	Cursor   int
	Expanded bool
	Height   int
	Offset   int
}

// newTreeBrowserModel flattens t into display order rows.
func newTreeBrowserModel(t *tree.Tree) TreeBrowserModel {
	var rows []treeRow
	t.Walk(func(n *tree.Node, depth int) {
		rows = append(rows, treeRow{node: n, depth: depth})
	})
	return TreeBrowserModel{
		Rows:   rows,
		Height: 20,
	}
}

func (m TreeBrowserModel) Init() tea.Cmd {
	return nil
}

func (m TreeBrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TreeBrowserModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Family Tree"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Rows) {
		end = len(m.Rows)
	}

	for i := m.Offset; i < end; i++ {
		row := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := cursor + strings.Repeat("  ", row.depth) + displayName(row.node.Record)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	if m.Expanded && len(m.Rows) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.detailView(m.Rows[m.Cursor]))
	}

	return b.String()
}

// detailView renders the detail pane for one row.
func (m TreeBrowserModel) detailView(row treeRow) string {
	rec := row.node.Record
	var b strings.Builder

	writeField := func(key, value string) {
		b.WriteString("  " + listDimStyle.Render(fmt.Sprintf("%-12s", key)) + StyleValue.Render(value) + "\n")
	}

	writeField("id", rec.ID)
	writeField("generation", fmt.Sprintf("%d", row.depth))
	writeField("children", fmt.Sprintf("%d", len(row.node.Children)))
	if rec.FatherID != nil {
		writeField("father", *rec.FatherID)
	}
	if rec.MotherID != nil {
		writeField("mother", *rec.MotherID)
	}
	if rec.SiblingOrder != nil {
		writeField("order", fmt.Sprintf("%d", *rec.SiblingOrder))
	}
	if rec.HasPhoto() {
		writeField("photo", "yes")
	}

	return strings.TrimRight(b.String(), "\n")
}
