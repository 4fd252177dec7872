package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dani3/rash/internal/pipeline"
)

func check(t *testing.T, e *Engine, line string) []Warning {
	t.Helper()
	p, err := pipeline.Parse(line)
	require.NoError(t, err)
	return e.Check(line, p)
}

func TestBuiltinRules(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"ls -l", nil},
		{"cat < a.txt > b.txt", nil},
		{"sleep 1 &", nil},
		{"sort < data.txt > data.txt", []string{"redirect-same-file"}},
		{"sort < ./data.txt > data.txt", []string{"redirect-same-file"}},
		{"cat > a > b", []string{"operator-in-path"}},
		{"cat < a | b", []string{"operator-in-path"}},
		{"a & b", []string{"embedded-background"}},
		{"a && b &", []string{"embedded-background"}},
		{"< in.txt", []string{"redirect-without-command"}},
		{"> x < x", []string{"redirect-same-file", "redirect-without-command"}},
	}

	e := NewEngine()
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := check(t, e, tt.line)
			assert.Equal(t, tt.want, RuleIDs(got))
			for _, w := range got {
				assert.NotEmpty(t, w.Message)
			}
		})
	}
}

func TestEngineDisable(t *testing.T) {
	e := NewEngine()
	e.Disable("redirect-same-file", "no-such-rule")

	assert.Empty(t, check(t, e, "sort < f > f"))
	for _, r := range e.Rules() {
		assert.NotEqual(t, "redirect-same-file", r.ID)
	}
}

func TestEngineAddRunsAfterBuiltins(t *testing.T) {
	e := NewEngine()
	e.Add(Rule{
		ID: "no-rm",
		Check: func(in *Input) *Warning {
			for _, c := range in.Pipeline.Commands {
				if c.Name == "rm" {
					return &Warning{Message: "rm is not allowed here"}
				}
			}
			return nil
		},
	})

	got := check(t, e, "rm x > x < x")
	assert.Equal(t, []string{"redirect-same-file", "no-rm"}, RuleIDs(got))
}

func TestEngineCheckNilPipeline(t *testing.T) {
	assert.Nil(t, NewEngine().Check("a |", nil))
}

func TestLoadScript(t *testing.T) {
	src := []byte(`
RULE_ID = "no-sudo"
DESCRIPTION = "sudo must not appear in a pipeline"

def check(p):
    out = []
    for c in p.commands:
        if c.name == "sudo":
            out.append("sudo used with %s" % " ".join(c.args))
    if p.background and p.redirect_out == "":
        out.append("background job without output file")
    if out:
        return out
    return None
`)
	r, err := LoadScript("rules.star", src)
	require.NoError(t, err)
	assert.Equal(t, "no-sudo", r.ID)
	assert.Equal(t, "sudo must not appear in a pipeline", r.Description)

	e := NewEngine(r)
	assert.Empty(t, check(t, e, "ls | wc -l"))

	got := check(t, e, "sudo rm -rf tmp &")
	require.Len(t, got, 1)
	assert.Equal(t, "no-sudo", got[0].RuleID)
	assert.Equal(t, "sudo used with rm -rf tmp; background job without output file", got[0].Message)
}

func TestLoadScriptStringResult(t *testing.T) {
	r, err := LoadScript("simple.star", []byte(`
def check(p):
    if len(p.commands) > 3:
        return "pipeline too long"
`))
	require.NoError(t, err)
	assert.Equal(t, "script:simple.star", r.ID)

	e := NewEngine(r)
	assert.Empty(t, check(t, e, "a | b | c"))
	got := check(t, e, "a | b | c | d")
	require.Len(t, got, 1)
	assert.Equal(t, "pipeline too long", got[0].Message)
}

func TestLoadScriptErrors(t *testing.T) {
	_, err := LoadScript("bad.star", []byte("def check(:\n"))
	assert.Error(t, err)

	_, err = LoadScript("nocheck.star", []byte("x = 1\n"))
	assert.ErrorContains(t, err, "check(pipeline) is not defined")
}

func TestScriptBadReturnBecomesWarning(t *testing.T) {
	r, err := LoadScript("int.star", []byte("def check(p):\n    return 1\n"))
	require.NoError(t, err)

	got := check(t, NewEngine(r), "ls")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "check returned int")
}

func TestScriptRuntimeErrorBecomesWarning(t *testing.T) {
	r, err := LoadScript("fail.star", []byte("def check(p):\n    return p.commands[5].name\n"))
	require.NoError(t, err)

	got := check(t, NewEngine(r), "ls")
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Message, "script failed")
}
