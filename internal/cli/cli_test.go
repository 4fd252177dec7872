package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dani3/rash/internal/audit"
	"github.com/dani3/rash/internal/lint"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func testEnv(t *testing.T, withAudit bool) (*Env, string) {
	t.Helper()
	env := &Env{
		Printer: NewPrinter(FormatText, false),
		Lint:    lint.NewEngine(),
	}
	if !withAudit {
		return env, ""
	}
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l, err := audit.NewLogger(path)
	require.NoError(t, err)
	env.Audit = l
	return env, path
}

func TestEvalSuccess(t *testing.T) {
	env, _ := testEnv(t, false)
	var stdout, stderr bytes.Buffer

	ok := env.Eval("ls -l | grep go", &stdout, &stderr)
	assert.True(t, ok)
	assert.Equal(t, "[0] ls -l\n[1] grep go\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestEvalFailure(t *testing.T) {
	env, _ := testEnv(t, false)
	var stdout, stderr bytes.Buffer

	ok := env.Eval("cat <", &stdout, &stderr)
	assert.False(t, ok)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "missing file path after '<'")
}

func TestEvalRecordsAudit(t *testing.T) {
	env, path := testEnv(t, true)
	var stdout, stderr bytes.Buffer

	env.Eval("sort < f > f", &stdout, &stderr)
	env.Eval("| x", &stdout, &stderr)

	n, err := audit.Verify(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := audit.Tail(path, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"redirect-same-file"}, entries[0].Warnings)
	assert.Equal(t, "EmptyCommandToken", entries[1].ErrorKind)
}

func TestRunParse(t *testing.T) {
	env, _ := testEnv(t, false)
	var stdout, stderr bytes.Buffer

	code := RunParse(env, []string{"echo hi", "a | | b"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, "[0] echo hi\n", stdout.String())
	assert.Contains(t, stderr.String(), "missing command after '|'")
}

func TestRunParseMissingLine(t *testing.T) {
	env, _ := testEnv(t, false)
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, RunParse(env, nil, &stdout, &stderr))
}

func TestRunParseStream(t *testing.T) {
	env, _ := testEnv(t, false)
	var stdout, stderr bytes.Buffer

	in := strings.NewReader("echo a\n\necho b &\n")
	code := RunParseStream(context.Background(), env, in, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, "[0] echo a\n(no commands)\n[0] echo b\nbackground\n", stdout.String())
}

func TestRunParseStreamNoTrailingNewline(t *testing.T) {
	env, _ := testEnv(t, false)
	var stdout, stderr bytes.Buffer

	code := RunParseStream(context.Background(), env, strings.NewReader("a\r\nb | c"), &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, "[0] a\n[0] b\n[1] c\n", stdout.String())
}

func TestRunParseStreamSkipsLongLine(t *testing.T) {
	env, _ := testEnv(t, false)
	var stdout, stderr bytes.Buffer

	long := strings.Repeat("x", 2*maxLineBytes)
	in := strings.NewReader("echo a\n" + long + "\necho b\n")
	code := RunParseStream(context.Background(), env, in, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Equal(t, "[0] echo a\n[0] echo b\n", stdout.String())
	assert.Contains(t, stderr.String(), "line 2: longer than")
}

func TestRunParseStreamCancel(t *testing.T) {
	env, _ := testEnv(t, false)
	var stdout, stderr bytes.Buffer

	// The writer is never written to, so reads block until it is closed.
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- RunParseStream(ctx, env, pr, &stdout, &stderr)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		assert.Equal(t, ExitInterrupted, code)
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after cancel")
	}
}

func TestRunLint(t *testing.T) {
	env, _ := testEnv(t, false)

	t.Run("clean", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 0, RunLint(env, "ls > out", &stdout, &stderr))
		assert.Empty(t, stdout.String())
	})
	t.Run("warning", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, RunLint(env, "< in", &stdout, &stderr))
		assert.Contains(t, stdout.String(), "[redirect-without-command]")
	})
	t.Run("parse error", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, RunLint(env, "ls >", &stdout, &stderr))
		assert.Contains(t, stderr.String(), "rash:")
	})
	t.Run("render failure is logged", func(t *testing.T) {
		var logs bytes.Buffer
		logged := &Env{
			Printer: env.Printer,
			Lint:    env.Lint,
			Log:     slog.New(slog.NewTextHandler(&logs, nil)),
		}
		var stdout bytes.Buffer
		assert.Equal(t, 1, RunLint(logged, "ls >", &stdout, failingWriter{}))
		assert.Contains(t, logs.String(), "render error")
	})
}

func TestSessionHandle(t *testing.T) {
	env, _ := testEnv(t, false)
	var stdout, stderr bytes.Buffer
	s := NewSession(env, &stdout, &stderr)

	assert.True(t, s.Handle("   "))
	assert.Empty(t, stdout.String())

	assert.True(t, s.Handle("ls |"))
	assert.Contains(t, stderr.String(), "missing command after '|'")

	assert.True(t, s.Handle("ls"))
	assert.Equal(t, "[0] ls\n", stdout.String())

	assert.False(t, s.Handle(" exit "))
	assert.False(t, s.Handle("quit"))
}

func TestRunAudit(t *testing.T) {
	env, path := testEnv(t, true)
	var discard bytes.Buffer
	env.Eval("ls | wc", &discard, &discard)
	env.Eval("ls >", &discard, &discard)
	env.Eval("sleep 1 &", &discard, &discard)

	t.Run("verify", func(t *testing.T) {
		var out bytes.Buffer
		assert.Equal(t, 0, RunAudit(&out, path, []string{"verify"}))
		assert.Equal(t, "audit log integrity verified (3 entries)\n", out.String())
	})
	t.Run("tail", func(t *testing.T) {
		var out bytes.Buffer
		assert.Equal(t, 0, RunAudit(&out, path, []string{"tail", "1"}))
		assert.Contains(t, out.String(), `"line": "sleep 1 &"`)
		assert.NotContains(t, out.String(), `"line": "ls | wc"`)
	})
	t.Run("stats", func(t *testing.T) {
		var out bytes.Buffer
		assert.Equal(t, 0, RunAudit(&out, path, []string{"stats"}))
		assert.Contains(t, out.String(), "lines:      3\n")
		assert.Contains(t, out.String(), "parsed:     2\n")
		assert.Contains(t, out.String(), "background: 1\n")
		assert.Contains(t, out.String(), "MalformedRedirection")
	})
	t.Run("bad count", func(t *testing.T) {
		var out bytes.Buffer
		assert.Equal(t, 1, RunAudit(&out, path, []string{"tail", "x"}))
	})
	t.Run("usage", func(t *testing.T) {
		var out bytes.Buffer
		assert.Equal(t, 1, RunAudit(&out, path, nil))
		assert.Equal(t, 1, RunAudit(&out, path, []string{"bogus"}))
	})
}
