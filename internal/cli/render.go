package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/dani3/rash/internal/lint"
	"github.com/dani3/rash/internal/pipeline"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ShouldColor resolves a color mode against the writer the output goes to.
func ShouldColor(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Printer renders parse results in one of the output formats.
type Printer struct {
	format string
	color  bool

	name  *color.Color
	op    *color.Color
	err   *color.Color
	warn  *color.Color
	faint *color.Color
}

// NewPrinter creates a Printer. An unknown format falls back to text.
func NewPrinter(format string, useColor bool) *Printer {
	switch format {
	case FormatJSON, FormatYAML:
	default:
		format = FormatText
	}
	p := &Printer{
		format: format,
		color:  useColor,
		name:   color.New(color.FgGreen, color.Bold),
		op:     color.New(color.FgCyan, color.Bold),
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow),
		faint:  color.New(color.Faint),
	}
	if useColor {
		// fatih/color disables itself when stdout is not a terminal; the
		// caller has already decided.
		for _, c := range []*color.Color{p.name, p.op, p.err, p.warn, p.faint} {
			c.EnableColor()
		}
	}
	return p
}

func (pr *Printer) sprintf(c *color.Color, format string, a ...any) string {
	if pr.color {
		return c.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}

// document is the JSON/YAML shape of a parse result.
type document struct {
	pipeline.Pipeline `yaml:",inline"`
	Warnings          []lint.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// errorDocument is the JSON/YAML shape of a parse failure.
type errorDocument struct {
	Error string `json:"error" yaml:"error"`
	Kind  string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Line  string `json:"line" yaml:"line"`
	Pos   int    `json:"pos" yaml:"pos"`
}

// Render writes a parsed pipeline and its lint warnings.
func (pr *Printer) Render(w io.Writer, p *pipeline.Pipeline, warnings []lint.Warning) error {
	switch pr.format {
	case FormatJSON:
		return writeJSON(w, document{Pipeline: *p, Warnings: warnings})
	case FormatYAML:
		return writeYAML(w, document{Pipeline: *p, Warnings: warnings})
	}

	var b strings.Builder
	if p.Empty() {
		b.WriteString(pr.sprintf(pr.faint, "(no commands)") + "\n")
	}
	for i, c := range p.Commands {
		fmt.Fprintf(&b, "[%d] %s", i, pr.sprintf(pr.name, "%s", c.Name))
		for _, a := range c.Args {
			b.WriteString(" " + a)
		}
		b.WriteByte('\n')
	}
	if p.HasRedirectIn() {
		fmt.Fprintf(&b, "stdin  %s %s\n", pr.sprintf(pr.op, "<"), p.RedirectIn)
	}
	if p.HasRedirectOut() {
		fmt.Fprintf(&b, "stdout %s %s\n", pr.sprintf(pr.op, ">"), p.RedirectOut)
	}
	if p.Background {
		fmt.Fprintf(&b, "%s\n", pr.sprintf(pr.op, "background"))
	}
	for _, wn := range warnings {
		fmt.Fprintf(&b, "%s [%s] %s\n", pr.sprintf(pr.warn, "warning:"), wn.RuleID, wn.Message)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderWarnings writes only lint warnings.
func (pr *Printer) RenderWarnings(w io.Writer, warnings []lint.Warning) error {
	switch pr.format {
	case FormatJSON:
		if warnings == nil {
			warnings = []lint.Warning{}
		}
		return writeJSON(w, warnings)
	case FormatYAML:
		if warnings == nil {
			warnings = []lint.Warning{}
		}
		return writeYAML(w, warnings)
	}
	for _, wn := range warnings {
		if _, err := fmt.Fprintf(w, "%s [%s] %s\n", pr.sprintf(pr.warn, "warning:"), wn.RuleID, wn.Message); err != nil {
			return err
		}
	}
	return nil
}

// RenderError writes a parse failure. For text output the offending line is
// echoed with a caret under the position at fault.
func (pr *Printer) RenderError(w io.Writer, line string, err error) error {
	doc := errorDocument{Error: err.Error(), Line: line}
	var pe *pipeline.ParseError
	if errors.As(err, &pe) {
		doc.Kind = pe.Kind.String()
		doc.Pos = pe.Pos
	}

	switch pr.format {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatYAML:
		return writeYAML(w, doc)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", pr.sprintf(pr.err, "rash:"), doc.Error)
	if pe != nil {
		fmt.Fprintf(&b, "  %s\n  %s%s\n", line, caretPad(line, pe.Pos), pr.sprintf(pr.err, "^"))
	}
	_, werr := io.WriteString(w, b.String())
	return werr
}

// caretPad returns whitespace that lines up with byte offset pos in line,
// keeping tabs so the caret stays aligned.
func caretPad(line string, pos int) string {
	if pos > len(line) {
		pos = len(line)
	}
	var b strings.Builder
	for _, r := range line[:pos] {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
