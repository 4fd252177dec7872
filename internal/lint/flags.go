package lint

import (
	"fmt"
	"sort"
	"strings"
)

// FlagConfig lists options that should be flagged when a command uses them,
// either anywhere in its arguments or after a given subcommand.
type FlagConfig struct {
	Flags       []string                 `yaml:"flags"`
	Subcommands map[string]FlagSubConfig `yaml:"subcommands"`
}

// FlagSubConfig lists options flagged after one subcommand.
type FlagSubConfig struct {
	Flags []string `yaml:"flags"`
}

// FlagRules compiles per-command flag lists into rules. Only a stage's own
// name is matched; a command passed as an argument (xargs rm) is not.
// Rule IDs are "flag:<command>" and "flag:<command>:<subcommand>",
// ordered by command then subcommand so output is stable.
func FlagRules(cfg map[string]FlagConfig) []Rule {
	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)

	var rules []Rule
	for _, name := range names {
		c := cfg[name]
		if len(c.Flags) > 0 {
			rules = append(rules, flagRule(name, "", c.Flags))
		}

		subs := make([]string, 0, len(c.Subcommands))
		for sub := range c.Subcommands {
			subs = append(subs, sub)
		}
		sort.Strings(subs)
		for _, sub := range subs {
			if flags := c.Subcommands[sub].Flags; len(flags) > 0 {
				rules = append(rules, flagRule(name, sub, flags))
			}
		}
	}
	return rules
}

func flagRule(name, sub string, flags []string) Rule {
	id := "flag:" + name
	target := name
	if sub != "" {
		id += ":" + sub
		target += " " + sub
	}
	return Rule{
		ID:          id,
		Description: fmt.Sprintf("%s is used with %s", target, strings.Join(flags, ", ")),
		Check: func(in *Input) *Warning {
			for _, c := range in.Pipeline.Commands {
				if c.Name != name {
					continue
				}
				args := c.Args
				if sub != "" {
					if len(args) == 0 || args[0] != sub {
						continue
					}
					args = args[1:]
				}
				if flag, ok := findFlag(args, flags); ok {
					return &Warning{Message: fmt.Sprintf("%s uses %s", target, flag)}
				}
			}
			return nil
		},
	}
}

// findFlag returns the first of flags present in args. It understands:
//   - exact match: "-f" matches "-f"
//   - combined short flags: "-rf" matches "-r" and "-f"
//   - short flag with value: "-j4" matches "-j"
//   - long flag with '=': "--force=yes" matches "--force"
func findFlag(args, flags []string) (string, bool) {
	for _, arg := range args {
		if arg == "" || arg[0] != '-' {
			continue
		}
		for _, flag := range flags {
			if arg == flag {
				return flag, true
			}
			if len(flag) == 2 && flag[0] == '-' && flag[1] != '-' &&
				len(arg) > 2 && arg[1] != '-' &&
				strings.IndexByte(arg[1:], flag[1]) >= 0 {
				return flag, true
			}
			if strings.HasPrefix(flag, "--") && strings.HasPrefix(arg, flag+"=") {
				return flag, true
			}
		}
	}
	return "", false
}
