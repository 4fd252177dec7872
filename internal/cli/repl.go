package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abiosoft/readline"
)

// ReplOptions configures the interactive read loop.
type ReplOptions struct {
	Prompt       string
	HistoryFile  string // empty disables persistent history
	HistoryLimit int
}

// Session is the read loop without terminal handling: it decides what to
// do with each line.
type Session struct {
	env    *Env
	stdout io.Writer
	stderr io.Writer
}

// NewSession creates a Session writing to stdout and stderr.
func NewSession(env *Env, stdout, stderr io.Writer) *Session {
	return &Session{env: env, stdout: stdout, stderr: stderr}
}

// Handle processes one line and reports whether the loop should continue.
// Blank lines are skipped; "exit" and "quit" end the loop; everything else
// is parsed and displayed. A bad line only produces a diagnostic.
func (s *Session) Handle(line string) bool {
	switch strings.TrimSpace(line) {
	case "":
		return true
	case "exit", "quit":
		return false
	}
	s.env.Eval(line, s.stdout, s.stderr)
	return true
}

// RunRepl runs the interactive read loop until EOF or exit.
func RunRepl(env *Env, opts ReplOptions, stdin io.Reader, stdout, stderr io.Writer) int {
	if opts.HistoryFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.HistoryFile), 0700); err != nil {
			env.logger().Warn("history disabled", "path", opts.HistoryFile, "err", err)
			opts.HistoryFile = ""
		}
	}

	cfg := &readline.Config{
		Prompt:          opts.Prompt,
		HistoryFile:     opts.HistoryFile,
		HistoryLimit:    opts.HistoryLimit,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           readline.NewCancelableStdin(stdin),
		Stdout:          stdout,
		Stderr:          stderr,
	}
	if err := cfg.Init(); err != nil {
		fmt.Fprintf(stderr, "rash: %v\n", err)
		return 2
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "rash: %v\n", err)
		return 2
	}
	defer rl.Close()

	session := NewSession(env, rl.Stdout(), rl.Stderr())
	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue // discard the partial line
		case errors.Is(err, io.EOF):
			return 0
		case err != nil:
			fmt.Fprintf(stderr, "rash: %v\n", err)
			return 2
		}
		if !session.Handle(line) {
			return 0
		}
	}
}
