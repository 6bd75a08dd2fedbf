package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/svz/pkg/depgraph"
	"github.com/matzehuels/svz/pkg/parser"
)

func browser(t *testing.T) StructBrowser {
	t.Helper()
	g, _ := depgraph.Build(parser.Parse(listSrc).Structures)
	return NewStructBrowser(g)
}

func press(m StructBrowser, keys ...tea.KeyMsg) (StructBrowser, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var model tea.Model
		model, cmd = m.Update(k)
		m = model.(StructBrowser)
	}
	return m, cmd
}

var (
	keyDown      = tea.KeyMsg{Type: tea.KeyDown}
	keyUp        = tea.KeyMsg{Type: tea.KeyUp}
	keyEnter     = tea.KeyMsg{Type: tea.KeyEnter}
	keyBackspace = tea.KeyMsg{Type: tea.KeyBackspace}
	keyQuit      = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
)

func TestStructBrowserNavigation(t *testing.T) {
	m := browser(t)
	if m.Selected() != "node" {
		t.Fatalf("initial selection = %q, want node", m.Selected())
	}

	m, _ = press(m, keyDown)
	if m.Selected() != "list" {
		t.Errorf("after down: %q, want list", m.Selected())
	}

	// Cursor stays within bounds.
	m, _ = press(m, keyDown, keyDown)
	if m.Cursor != 1 {
		t.Errorf("cursor = %d past the end", m.Cursor)
	}
	m, _ = press(m, keyUp, keyUp, keyUp)
	if m.Cursor != 0 {
		t.Errorf("cursor = %d before the start", m.Cursor)
	}
}

func TestStructBrowserFollowReference(t *testing.T) {
	m := browser(t)
	m, _ = press(m, keyDown, keyEnter)
	if m.Selected() != "node" {
		t.Errorf("enter on list should jump to node, got %q", m.Selected())
	}
	if len(m.History) != 1 {
		t.Errorf("history = %v, want one entry", m.History)
	}

	m, _ = press(m, keyBackspace)
	if m.Selected() != "list" || len(m.History) != 0 {
		t.Errorf("backspace should return to list, got %q (history %v)", m.Selected(), m.History)
	}

	// Backspace with no history is a no-op.
	m, _ = press(m, keyBackspace)
	if m.Selected() != "list" {
		t.Errorf("backspace without history moved to %q", m.Selected())
	}
}

func TestStructBrowserScrolls(t *testing.T) {
	m := browser(t)
	m.Height = 1

	m, _ = press(m, keyDown)
	if m.Offset != 1 {
		t.Errorf("offset = %d, want 1 after scrolling down", m.Offset)
	}
	m, _ = press(m, keyUp)
	if m.Offset != 0 {
		t.Errorf("offset = %d, want 0 after scrolling up", m.Offset)
	}
}

func TestStructBrowserWindowSize(t *testing.T) {
	m := browser(t)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if got := model.(StructBrowser).Height; got != 5 {
		t.Errorf("height = %d, want minimum of 5", got)
	}
}

func TestStructBrowserQuit(t *testing.T) {
	_, cmd := press(browser(t), keyQuit)
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestStructBrowserView(t *testing.T) {
	view := browser(t).View()
	for _, want := range []string{"Structures", "struct node", "value", "next", "references", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
