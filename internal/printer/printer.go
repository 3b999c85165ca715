// Package printer writes operator-facing output for the CLI. Logs go to the
// log file through zerolog; everything a user should read goes through here.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/hay-kot/steward/internal/core/styles"
)

type ctxKey struct{}

// Printer formats status lines with icons and theme colors. Color is dropped
// when the output is not a terminal.
type Printer struct {
	out   io.Writer
	err   io.Writer
	color bool
}

// New creates a Printer writing normal output to out and errors to err.
func New(out, err io.Writer) *Printer {
	return &Printer{out: out, err: err, color: isTerminal(out)}
}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the Printer stored in ctx, or one writing to stdout/stderr.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok && p != nil {
		return p
	}
	return New(os.Stdout, os.Stderr)
}

// WithColor forces color on or off.
func (p *Printer) WithColor(on bool) *Printer {
	cp := *p
	cp.color = on
	return &cp
}

// Color reports whether output is styled.
func (p *Printer) Color() bool { return p.color }

// Writer returns the normal output writer.
func (p *Printer) Writer() io.Writer { return p.out }

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

func (p *Printer) line(w io.Writer, icon string, style lipgloss.Style, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", p.render(style, icon), msg)
}

// Printf prints a plain line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

// Successf prints a line prefixed with a check mark.
func (p *Printer) Successf(format string, args ...any) {
	p.line(p.out, styles.IconCheck, styles.SuccessStyle, fmt.Sprintf(format, args...))
}

// Infof prints a line prefixed with an arrow.
func (p *Printer) Infof(format string, args ...any) {
	p.line(p.out, styles.IconArrow, styles.AccentStyle, fmt.Sprintf(format, args...))
}

// Warnf prints a warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.out, styles.IconWarn, styles.WarningStyle, fmt.Sprintf(format, args...))
}

// Errorf prints an error line to the error writer.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.err, styles.IconCross, styles.ErrorStyle, fmt.Sprintf(format, args...))
}

// Success prints a titled success line with a muted detail underneath.
func (p *Printer) Success(title, detail string) {
	p.line(p.out, styles.IconCheck, styles.SuccessStyle, p.render(styles.TitleStyle, title))
	if detail != "" {
		_, _ = fmt.Fprintf(p.out, "  %s\n", p.render(styles.MutedStyle, detail))
	}
}

// Section prints a header followed by a divider.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.out, p.render(styles.HeaderStyle, title))
	_, _ = fmt.Fprintln(p.out, p.render(styles.DividerStyle, strings.Repeat("─", max(len(title), 20))))
}

// KeyValue prints an aligned label and value.
func (p *Printer) KeyValue(label, value string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "  %s %s\n", styles.LabelStyle.Render(label), value)
		return
	}
	_, _ = fmt.Fprintf(p.out, "  %-18s %s\n", label, value)
}

// State prints a record state name in its state color followed by msg.
func (p *Printer) State(state, msg string) {
	_, _ = fmt.Fprintf(p.out, "  %s %s\n", p.render(styles.StateStyle(state), fmt.Sprintf("%-16s", state)), msg)
}

// CheckItem prints an indented passing item.
func (p *Printer) CheckItem(label, detail string) {
	p.item(styles.IconCheck, styles.SuccessStyle, label, detail)
}

// WarnItem prints an indented warning item.
func (p *Printer) WarnItem(label, detail string) {
	p.item(styles.IconPending, styles.WarningStyle, label, detail)
}

// FailItem prints an indented failing item.
func (p *Printer) FailItem(label, detail string) {
	p.item(styles.IconCross, styles.ErrorStyle, label, detail)
}

func (p *Printer) item(icon string, style lipgloss.Style, label, detail string) {
	msg := label
	if detail != "" {
		msg += " " + p.render(styles.MutedStyle, detail)
	}
	_, _ = fmt.Fprintf(p.out, "  %s %s\n", p.render(style, icon), msg)
}
