package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svz/pkg/depgraph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "browse [file...]",
		Short: "Explore structures and their references interactively",
		Long: `Explore structures and their references interactively.

The left table lists every structure; the right pane shows the selected
structure's fields, the structures it references and those referencing it.
Enter follows the first reference, backspace goes back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			opts := c.pipelineOptions()
			src.apply(cmd, &opts)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			sources, err := readSources(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, src.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			parsed, err := runner.Parse(ctx, sources, opts)
			if err != nil {
				return err
			}
			g, _ := runner.Build(ctx, parsed, opts)
			if g.NodeCount() == 0 {
				printInfo("No structures found")
				return nil
			}

			_, err = tea.NewProgram(NewStructBrowser(g), tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}

	src.bind(cmd)
	return cmd
}

// =============================================================================
// StructBrowser - Interactive structure navigation
// =============================================================================

// StructBrowser is the bubbletea model behind `svz browse`.
type StructBrowser struct {
	Graph   *depgraph.Graph
	Names   []string
	Cursor  int
	Height  int
	Offset  int
	History []int // cursor positions to return to with backspace
}

// NewStructBrowser creates a browser positioned on the first structure.
func NewStructBrowser(g *depgraph.Graph) StructBrowser {
	return StructBrowser{
		Graph:  g,
		Names:  g.Names(),
		Height: 15,
	}
}

// Selected returns the name under the cursor, or "" for an empty graph.
func (m StructBrowser) Selected() string {
	if len(m.Names) == 0 {
		return ""
	}
	return m.Names[m.Cursor]
}

func (m StructBrowser) Init() tea.Cmd {
	return nil
}

func (m StructBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m = m.moveTo(m.Cursor - 1)
			}
		case "down", "j":
			if m.Cursor < len(m.Names)-1 {
				m = m.moveTo(m.Cursor + 1)
			}
		case "home", "g":
			m = m.moveTo(0)
		case "end", "G":
			m = m.moveTo(len(m.Names) - 1)
		case "enter", "right", "l":
			children := m.Graph.Children(m.Selected())
			if len(children) == 0 {
				return m, nil
			}
			if i := m.indexOf(children[0]); i >= 0 {
				m.History = append(m.History, m.Cursor)
				m = m.moveTo(i)
			}
		case "backspace", "left", "h":
			if n := len(m.History); n > 0 {
				prev := m.History[n-1]
				m.History = m.History[:n-1]
				m = m.moveTo(prev)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		m = m.moveTo(m.Cursor)
	}
	return m, nil
}

// moveTo places the cursor on i and scrolls it into view.
func (m StructBrowser) moveTo(i int) StructBrowser {
	if len(m.Names) == 0 {
		return m
	}
	m.Cursor = max(0, min(i, len(m.Names)-1))
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m StructBrowser) indexOf(name string) int {
	for i, n := range m.Names {
		if n == name {
			return i
		}
	}
	return -1
}

func (m StructBrowser) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Structures"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ follow reference  ⌫ back  q quit"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.listView(), "  ", m.detailView()))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Names))))

	return b.String()
}

func (m StructBrowser) listView() string {
	end := min(m.Offset+m.Height, len(m.Names))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		name := m.Names[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		s, _ := m.Graph.Node(name)
		rows = append(rows, []string{
			cursor,
			name,
			strconv.Itoa(s.FieldCount()),
			strconv.Itoa(len(m.Graph.Children(name))),
			strconv.Itoa(len(m.Graph.Parents(name))),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Struct", "Fields", "Out", "In").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 2 {
				return listDimStyle
			}
			return listNormalStyle
		}).
		Render()
}

func (m StructBrowser) detailView() string {
	name := m.Selected()
	s, ok := m.Graph.Node(name)
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("struct " + name))
	b.WriteString("\n")

	fields := s.Fields()
	if len(fields) == 0 {
		b.WriteString(listDimStyle.Render("  (no fields)"))
		b.WriteString("\n")
	}
	for _, f := range fields {
		typeName := StyleType.Render(f.TypeName)
		if _, isNode := m.Graph.Node(f.TypeName); isNode {
			typeName = StyleType.Underline(true).Render(f.TypeName)
		}
		pad := strings.Repeat(" ", max(1, s.Padding()-len(f.TypeName)))
		b.WriteString("  " + typeName + pad + listNormalStyle.Render(f.Name) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("references    ") + StyleValue.Render(joinOrDash(m.Graph.Children(name))) + "\n")
	b.WriteString(listDimStyle.Render("referenced by ") + StyleValue.Render(joinOrDash(m.Graph.Parents(name))))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorDim).
		Padding(0, 1).
		Render(b.String())
}
