package cli

import (
	"context"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmPromptStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	confirmChoiceStyle = lipgloss.NewStyle().Foreground(colorCyan)
)

// =============================================================================
// ConfirmModel - Interactive yes/no prompt
// =============================================================================

// ConfirmModel is the bubbletea model for a yes/no question.
type ConfirmModel struct {
	Prompt    string
	Yes       bool // highlighted choice
	Confirmed bool // final answer
	Done      bool
}

// NewConfirmModel creates a prompt that defaults to "no".
func NewConfirmModel(prompt string) ConfirmModel {
	return ConfirmModel{Prompt: prompt}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.Yes, m.Confirmed, m.Done = true, true, true
		return m, tea.Quit
	case "n", "N", "q", "esc", "ctrl+c":
		m.Yes, m.Confirmed, m.Done = false, false, true
		return m, tea.Quit
	case "left", "right", "h", "l", "tab":
		m.Yes = !m.Yes
	case "enter":
		m.Confirmed, m.Done = m.Yes, true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	if m.Done {
		return ""
	}
	yes, no := " yes ", "[no]"
	if m.Yes {
		yes, no = "[yes]", " no "
	}

	var b strings.Builder
	b.WriteString(confirmPromptStyle.Render(m.Prompt))
	b.WriteString(" ")
	b.WriteString(confirmChoiceStyle.Render(yes))
	b.WriteString(" ")
	b.WriteString(confirmChoiceStyle.Render(no))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("y/n  ←/→ switch  ⏎ confirm"))
	b.WriteString("\n")
	return b.String()
}

// confirm asks a yes/no question on the terminal.
func confirm(ctx context.Context, prompt string) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(prompt), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	return final.(ConfirmModel).Confirmed, nil
}
