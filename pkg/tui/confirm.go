package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	awsengine "github.com/DrSkyle/platform-cli/pkg/engine/aws"
)

// Confirmer binds Ask to the given streams.
func Confirmer(in io.Reader, out io.Writer) awsengine.Confirmer {
	return func(ctx context.Context, question string) (string, error) {
		return Ask(ctx, in, out, question)
	}
}

// Ask prompts with question and returns the operator's answer. Terminals get an
// interactive prompt; pipes and files are read line by line.
func Ask(ctx context.Context, in io.Reader, out io.Writer, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if isTerminal(in) {
		return askInteractive(ctx, in, out, question)
	}
	return askLine(in, out, question)
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func askInteractive(ctx context.Context, in io.Reader, out io.Writer, question string) (string, error) {
	p := tea.NewProgram(NewConfirmModel(question),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithContext(ctx))

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}
	m, ok := final.(ConfirmModel)
	if !ok || m.Cancelled() {
		return "", nil
	}
	return m.Answer(), nil
}

func askLine(in io.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprintf(out, "%s ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
