package lint

import (
	"fmt"
	"log/slog"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/dani3/rash/internal/pipeline"
)

// LoadScript compiles a Starlark lint script and returns it as a Rule.
//
// The script must define check(pipeline). The argument is a struct with
// fields line, commands (each with name and args), redirect_in,
// redirect_out and background. check returns None when there is nothing to
// report, or a string or list of strings describing the problem. The
// optional globals RULE_ID and DESCRIPTION name the rule.
func LoadScript(filename string, src []byte) (Rule, error) {
	thread := &starlark.Thread{Name: "lint:" + filename}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, nil)
	if err != nil {
		return Rule{}, fmt.Errorf("load lint script %s: %w", filename, err)
	}

	check, ok := globals["check"].(starlark.Callable)
	if !ok {
		return Rule{}, fmt.Errorf("lint script %s: check(pipeline) is not defined", filename)
	}

	id := "script:" + filename
	if v, ok := globals["RULE_ID"].(starlark.String); ok && v != "" {
		id = string(v)
	}
	desc := "Rule loaded from " + filename
	if v, ok := globals["DESCRIPTION"].(starlark.String); ok && v != "" {
		desc = string(v)
	}

	// Frozen globals may be shared by concurrent threads.
	globals.Freeze()

	return Rule{
		ID:          id,
		Description: desc,
		Check: func(in *Input) *Warning {
			thread := &starlark.Thread{Name: id}
			res, err := starlark.Call(thread, check, starlark.Tuple{toStarlark(in)}, nil)
			if err != nil {
				slog.Debug("lint script failed", "rule", id, "err", err)
				return &Warning{Message: fmt.Sprintf("script failed: %v", err)}
			}
			msg, err := fromStarlark(res)
			if err != nil {
				return &Warning{Message: err.Error()}
			}
			if msg == "" {
				return nil
			}
			return &Warning{Message: msg}
		},
	}, nil
}

func toStarlark(in *Input) starlark.Value {
	p := in.Pipeline
	cmds := make([]starlark.Value, len(p.Commands))
	for i, c := range p.Commands {
		cmds[i] = commandStruct(c)
	}
	return starlarkstruct.FromStringDict(starlark.String("pipeline"), starlark.StringDict{
		"line":         starlark.String(in.Line),
		"commands":     starlark.NewList(cmds),
		"redirect_in":  starlark.String(p.RedirectIn),
		"redirect_out": starlark.String(p.RedirectOut),
		"background":   starlark.Bool(p.Background),
	})
}

func commandStruct(c pipeline.Command) starlark.Value {
	args := make([]starlark.Value, len(c.Args))
	for i, a := range c.Args {
		args[i] = starlark.String(a)
	}
	return starlarkstruct.FromStringDict(starlark.String("command"), starlark.StringDict{
		"name": starlark.String(c.Name),
		"args": starlark.NewList(args),
	})
}

// fromStarlark converts check's return value into a message. An empty
// message means no warning.
func fromStarlark(v starlark.Value) (string, error) {
	switch v := v.(type) {
	case starlark.NoneType:
		return "", nil
	case starlark.String:
		return string(v), nil
	case *starlark.List:
		msgs := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			s, ok := starlark.AsString(v.Index(i))
			if !ok {
				return "", fmt.Errorf("check returned a list containing %s, want strings", v.Index(i).Type())
			}
			if s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "; "), nil
	default:
		return "", fmt.Errorf("check returned %s, want None, string or list", v.Type())
	}
}
