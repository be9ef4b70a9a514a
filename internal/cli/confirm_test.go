package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(m ConfirmModel, keys ...tea.KeyMsg) (ConfirmModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(ConfirmModel)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestConfirmModel(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		want bool
	}{
		{"yes key", []tea.KeyMsg{runes("y")}, true},
		{"no key", []tea.KeyMsg{runes("n")}, false},
		{"enter defaults to no", []tea.KeyMsg{{Type: tea.KeyEnter}}, false},
		{"switch then enter", []tea.KeyMsg{{Type: tea.KeyTab}, {Type: tea.KeyEnter}}, true},
		{"switch twice then enter", []tea.KeyMsg{{Type: tea.KeyLeft}, {Type: tea.KeyRight}, {Type: tea.KeyEnter}}, false},
		{"escape", []tea.KeyMsg{{Type: tea.KeyEsc}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := press(NewConfirmModel("Reset?"), tt.keys...)
			if !m.Done {
				t.Fatal("model should be done")
			}
			if cmd == nil {
				t.Error("final key should quit the program")
			}
			if m.Confirmed != tt.want {
				t.Errorf("Confirmed = %v, want %v", m.Confirmed, tt.want)
			}
		})
	}
}

func TestConfirmModelView(t *testing.T) {
	m := NewConfirmModel("Reset all overrides?")
	if v := m.View(); !strings.Contains(v, "Reset all overrides?") || !strings.Contains(v, "[no]") {
		t.Errorf("View() = %q", v)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if v := m.View(); !strings.Contains(v, "[yes]") {
		t.Errorf("View() after switch = %q", v)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.View() != "" {
		t.Error("View() should be empty once answered")
	}
}

func TestConfirmModelIgnoresOtherMessages(t *testing.T) {
	m, cmd := press(NewConfirmModel("?"), runes("x"))
	if m.Done || cmd != nil {
		t.Error("unrelated keys should not answer the prompt")
	}
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	if next.(ConfirmModel).Done || cmd != nil {
		t.Error("window size messages should be ignored")
	}
}
