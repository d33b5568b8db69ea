// Package tui holds the interactive prompts of the CLI.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// ConfirmModel asks one question and captures a free-text answer.
type ConfirmModel struct {
	question  string
	input     textinput.Model
	answer    string
	done      bool
	cancelled bool
}

func NewConfirmModel(question string) ConfirmModel {
	ti := textinput.New()
	ti.Placeholder = "yes/no"
	ti.Prompt = "> "
	ti.CharLimit = 16
	ti.Focus()

	return ConfirmModel{question: question, input: ti}
}

func (m ConfirmModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.answer = strings.TrimSpace(m.input.Value())
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ConfirmModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return questionStyle.Render(m.question) + "\n" +
		m.input.View() + "\n" +
		hintStyle.Render("enter to answer, esc to cancel") + "\n"
}

// Answer is the trimmed input submitted with enter. Empty when cancelled.
func (m ConfirmModel) Answer() string { return m.answer }

func (m ConfirmModel) Cancelled() bool { return m.cancelled }
