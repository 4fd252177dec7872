package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dani3/rash/internal/pipeline"
)

// maxLineBytes bounds one line of a parse stream. Longer lines are skipped.
const maxLineBytes = 1 << 20

// ExitInterrupted is returned when a stream is cancelled, as a shell
// reports death by SIGINT.
const ExitInterrupted = 130

var errLineTooLong = errors.New("line too long")

// RunParse parses each line and prints the result. It returns 1 if any line
// failed to parse.
func RunParse(env *Env, lines []string, stdout, stderr io.Writer) int {
	if len(lines) == 0 {
		fmt.Fprintln(stderr, "rash parse: missing line")
		return 1
	}
	code := 0
	for _, line := range lines {
		if !env.Eval(line, stdout, stderr) {
			code = 1
		}
	}
	return code
}

// RunParseStream parses every line read from r, as a non-interactive read
// loop would. It stops early when ctx is cancelled, even if r is blocked.
func RunParseStream(ctx context.Context, env *Env, r io.Reader, stdout, stderr io.Writer) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	code := 0
	lines := scanLines(ctx, r)
	for {
		select {
		case <-ctx.Done():
			env.logger().Debug("parse stream cancelled", "err", ctx.Err())
			return ExitInterrupted
		case l, ok := <-lines:
			if !ok {
				return code
			}
			switch {
			case errors.Is(l.err, errLineTooLong):
				fmt.Fprintf(stderr, "rash parse: line %d: longer than %d bytes, skipped\n", l.n, maxLineBytes)
				code = 1
			case l.err != nil:
				fmt.Fprintf(stderr, "rash parse: %v\n", l.err)
				return 2
			default:
				if !env.Eval(l.text, stdout, stderr) {
					code = 1
				}
			}
		}
	}
}

type streamLine struct {
	n    int // 1-based line number
	text string
	err  error
}

// scanLines reads r on its own goroutine so the caller can give up on a
// blocked read. The channel is closed at EOF or after a read error.
func scanLines(ctx context.Context, r io.Reader) <-chan streamLine {
	ch := make(chan streamLine)
	send := func(l streamLine) bool {
		select {
		case ch <- l:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(ch)
		br := bufio.NewReaderSize(r, maxLineBytes)
		for n := 1; ; n++ {
			line, err := br.ReadSlice('\n')
			l := streamLine{n: n}
			if errors.Is(err, bufio.ErrBufferFull) {
				for errors.Is(err, bufio.ErrBufferFull) {
					_, err = br.ReadSlice('\n')
				}
				l.err = errLineTooLong
			} else {
				l.text = strings.TrimSuffix(strings.TrimSuffix(string(line), "\n"), "\r")
			}

			if l.err != nil || len(line) > 0 {
				if !send(l) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				send(streamLine{n: n, err: fmt.Errorf("read line %d: %w", n, err)})
				return
			}
		}
	}()
	return ch
}

// RunLint parses a line and prints only its lint warnings. It returns 1 if
// the line failed to parse or produced warnings.
func RunLint(env *Env, line string, stdout, stderr io.Writer) int {
	p, err := pipeline.Parse(line)
	if err != nil {
		if rerr := env.Printer.RenderError(stderr, line, err); rerr != nil {
			env.logger().Error("render error", "err", rerr)
		}
		return 1
	}
	if env.Lint == nil {
		return 0
	}
	warnings := env.Lint.Check(line, p)
	if err := env.Printer.RenderWarnings(stdout, warnings); err != nil {
		fmt.Fprintf(stderr, "rash lint: %v\n", err)
		return 2
	}
	if len(warnings) > 0 {
		return 1
	}
	return 0
}
