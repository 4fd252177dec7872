package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFlag(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		flags []string
		want  string
	}{
		{"exact", []string{"-f", "x"}, []string{"-f"}, "-f"},
		{"combined short", []string{"-rf", "dir"}, []string{"-f"}, "-f"},
		{"short with value", []string{"-j4", "all"}, []string{"-j"}, "-j"},
		{"long with value", []string{"--force=yes"}, []string{"--force"}, "--force"},
		{"long exact", []string{"--force"}, []string{"--force"}, "--force"},
		{"long does not match prefix", []string{"--forceful"}, []string{"--force"}, ""},
		{"long is not combined short", []string{"--fast"}, []string{"-f"}, ""},
		{"positional", []string{"f"}, []string{"-f"}, ""},
		{"empty arg", []string{""}, []string{"-f"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := findFlag(tt.args, tt.flags)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlagRules(t *testing.T) {
	rules := FlagRules(map[string]FlagConfig{
		"rm":   {Flags: []string{"-r", "-f"}},
		"make": {Flags: []string{"-j"}},
		"git": {Subcommands: map[string]FlagSubConfig{
			"push":  {Flags: []string{"--force", "-f"}},
			"clean": {Flags: []string{"-x"}},
			"log":   {},
		}},
	})

	var ids []string
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"flag:git:clean", "flag:git:push", "flag:make", "flag:rm"}, ids)

	e := NewEngine(rules...)
	tests := []struct {
		line string
		want []string
	}{
		{"rm -rf build", []string{"flag:rm"}},
		{"rm build", nil},
		{"find . | rm -f", []string{"flag:rm"}},
		{"find . | xargs rm -f", nil},
		{"make -j8 all", []string{"flag:make"}},
		{"git push --force=yes origin", []string{"flag:git:push"}},
		{"git push origin", nil},
		{"git commit -f", nil},
		{"git clean -xdf", []string{"flag:git:clean"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, RuleIDs(check(t, e, tt.line)))
		})
	}
}

func TestFlagRuleMessage(t *testing.T) {
	e := NewEngine(FlagRules(map[string]FlagConfig{
		"git": {Subcommands: map[string]FlagSubConfig{"push": {Flags: []string{"--force"}}}},
	})...)
	got := check(t, e, "git push --force")
	require.Len(t, got, 1)
	assert.Equal(t, "git push uses --force", got[0].Message)
}
