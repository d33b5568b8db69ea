// Package report renders workflow results for the operator: styled console lines for
// humans, and JSON, YAML or Terraform import blocks for tooling.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled status lines. Colours are dropped when w is not a terminal.
type Printer struct {
	w io.Writer

	success lipgloss.Style
	failure lipgloss.Style
	warn    lipgloss.Style
	info    lipgloss.Style
	title   lipgloss.Style
	detail  lipgloss.Style
}

func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		success: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF99")),
		failure: r.NewStyle().Foreground(lipgloss.Color("#FF3366")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#FFCC00")),
		info:    r.NewStyle().Foreground(lipgloss.Color("#00CCFF")),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00CCFF")),
		detail:  r.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
	}
}

// Writer returns the underlying writer for raw (machine-readable) output.
func (p *Printer) Writer() io.Writer { return p.w }

func (p *Printer) Success(format string, args ...any) { p.line(p.success, format, args...) }

func (p *Printer) Error(format string, args ...any) { p.line(p.failure, format, args...) }

func (p *Printer) Warn(format string, args ...any) { p.line(p.warn, format, args...) }

func (p *Printer) Info(format string, args ...any) { p.line(p.info, format, args...) }

func (p *Printer) Title(format string, args ...any) { p.line(p.title, format, args...) }

// Detail prints an unemphasised line, e.g. a nested listing entry.
func (p *Printer) Detail(format string, args ...any) { p.line(p.detail, format, args...) }

func (p *Printer) line(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(p.w, style.Render(fmt.Sprintf(format, args...)))
}
