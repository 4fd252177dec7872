package cli

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dani3/rash/internal/audit"
	"github.com/dani3/rash/internal/lint"
	"github.com/dani3/rash/internal/pipeline"
)

// Env carries the collaborators shared by every front end. Lint and Audit
// may be nil to disable them.
type Env struct {
	Printer *Printer
	Lint    *lint.Engine
	Audit   *audit.Logger
	Log     *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e.Log == nil {
		return slog.Default()
	}
	return e.Log
}

// Eval parses one line, renders the result on stdout (or the error on
// stderr) and records it in the audit log. It reports whether the line
// parsed.
func (e *Env) Eval(line string, stdout, stderr io.Writer) bool {
	start := time.Now()
	p, err := pipeline.Parse(line)
	duration := time.Since(start)

	var warnings []lint.Warning
	if err == nil && e.Lint != nil {
		warnings = e.Lint.Check(line, p)
	}

	e.record(line, p, err, warnings, duration)

	if err != nil {
		e.logger().Debug("parse failed", "line", line, "err", err)
		if rerr := e.Printer.RenderError(stderr, line, err); rerr != nil {
			e.logger().Error("render error", "err", rerr)
		}
		return false
	}

	e.logger().Debug("parsed", "line", line, "commands", len(p.Commands), "background", p.Background)
	if rerr := e.Printer.Render(stdout, p, warnings); rerr != nil {
		e.logger().Error("render pipeline", "err", rerr)
	}
	return true
}

// record is best-effort: a failing audit log must not stop the shell.
func (e *Env) record(line string, p *pipeline.Pipeline, err error, warnings []lint.Warning, duration time.Duration) {
	if e.Audit == nil {
		return
	}
	cwd, _ := os.Getwd()
	if lerr := e.Audit.Log(line, p, err, lint.RuleIDs(warnings), duration, cwd); lerr != nil {
		e.logger().Warn("audit log", "path", e.Audit.Path(), "err", lerr)
	}
}

// Close releases the audit log, if any.
func (e *Env) Close() error {
	if e.Audit == nil {
		return nil
	}
	return e.Audit.Close()
}
