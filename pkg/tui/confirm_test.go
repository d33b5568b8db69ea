package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestConfirmModelSubmit(t *testing.T) {
	var m tea.Model = NewConfirmModel("Proceed?")
	assert.Contains(t, m.View(), "Proceed?")

	m = typeText(m, " yes ")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	cm := m.(ConfirmModel)
	assert.Equal(t, "yes", cm.Answer())
	assert.False(t, cm.Cancelled())
	assert.Empty(t, cm.View())
}

func TestConfirmModelCancel(t *testing.T) {
	for _, key := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		var m tea.Model = NewConfirmModel("Proceed?")
		m = typeText(m, "yes")
		m, _ = m.Update(tea.KeyMsg{Type: key})

		cm := m.(ConfirmModel)
		assert.True(t, cm.Cancelled())
		assert.Empty(t, cm.Answer())
	}
}

func TestAskReadsLineWhenNotTerminal(t *testing.T) {
	var out bytes.Buffer
	answer, err := Ask(context.Background(), strings.NewReader("Yes\nignored\n"), &out, "Public?")
	require.NoError(t, err)
	assert.Equal(t, "Yes", answer)
	assert.Equal(t, "Public? ", out.String())
}

func TestAskEOFWithoutNewline(t *testing.T) {
	answer, err := Confirmer(strings.NewReader("no"), &bytes.Buffer{})(context.Background(), "Public?")
	require.NoError(t, err)
	assert.Equal(t, "no", answer)

	answer, err = Ask(context.Background(), strings.NewReader(""), &bytes.Buffer{}, "Public?")
	require.NoError(t, err)
	assert.Empty(t, answer)
}

func TestAskHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Ask(ctx, strings.NewReader("yes\n"), &bytes.Buffer{}, "Public?")
	assert.ErrorIs(t, err, context.Canceled)
}
