package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TypePickerModel - Interactive changelog type selection
// =============================================================================

// TypePickerModel is the bubbletea model for picking a changelog entry type.
type TypePickerModel struct {
	Types    []string
	Cursor   int
	Selected string
}

// NewTypePickerModel creates a new type picker over the given entry types.
func NewTypePickerModel(types []string) TypePickerModel {
	return TypePickerModel{Types: types}
}

func (m TypePickerModel) Init() tea.Cmd {
	return nil
}

func (m TypePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Types)-1 {
				m.Cursor++
			}
		case "enter":
			m.Selected = m.Types[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m TypePickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Entry Type"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, t := range m.Types {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(cursor + style.Render(t) + "\n")
	}
	return b.String()
}

// pickEntryType runs the interactive type picker and returns the selection,
// or an empty string when the user aborts.
func pickEntryType(types []string) (string, error) {
	program := tea.NewProgram(NewTypePickerModel(types))
	final, err := program.Run()
	if err != nil {
		return "", err
	}
	model, ok := final.(TypePickerModel)
	if !ok {
		return "", nil
	}
	return model.Selected, nil
}
