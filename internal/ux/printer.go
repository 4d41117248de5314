package ux

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes human-facing progress lines. Styling is applied through a
// lipgloss renderer bound to the output, so redirected or piped output stays
// plain text.
type Printer struct {
	w       io.Writer
	command lipgloss.Style
	info    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
}

// NewPrinter creates a Printer for w. noColor disables all styling.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	r := lipgloss.NewRenderer(w)
	p := &Printer{
		w:       w,
		command: r.NewStyle(),
		info:    r.NewStyle(),
		success: r.NewStyle(),
		warning: r.NewStyle(),
	}
	if noColor {
		return p
	}

	p.command = p.command.Bold(true).Foreground(lipgloss.Color("39"))
	p.info = p.info.Faint(true)
	p.success = p.success.Foreground(lipgloss.Color("42"))
	p.warning = p.warning.Bold(true).Foreground(lipgloss.Color("214"))
	return p
}

// Command announces a command line that is about to run
func (p *Printer) Command(line string) {
	fmt.Fprintln(p.w, p.command.Render(">>> "+line))
}

// Info prints a progress note
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.w, p.info.Render(fmt.Sprintf(format, args...)))
}

// Success prints a completion line
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.success.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a line the user should not miss, such as failed tests
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.warning.Render(fmt.Sprintf(format, args...)))
}
