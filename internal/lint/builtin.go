package lint

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dani3/rash/internal/pipeline"
)

const operatorChars = "<>|"

// Builtin returns the rules every engine starts with.
func Builtin() []Rule {
	return []Rule{
		{
			ID:          "redirect-same-file",
			Description: "Input and output redirect name the same file",
			Check:       checkRedirectSameFile,
		},
		{
			ID:          "operator-in-path",
			Description: "A redirect path contains an operator character",
			Check:       checkOperatorInPath,
		},
		{
			ID:          "embedded-background",
			Description: "Background marker is not at the end of the line",
			Check:       checkEmbeddedBackground,
		},
		{
			ID:          "redirect-without-command",
			Description: "Redirects are present but there is no command",
			Check:       checkRedirectWithoutCommand,
		},
	}
}

func checkRedirectSameFile(in *Input) *Warning {
	p := in.Pipeline
	if !p.HasRedirectIn() || !p.HasRedirectOut() {
		return nil
	}
	if filepath.Clean(p.RedirectIn) != filepath.Clean(p.RedirectOut) {
		return nil
	}
	return &Warning{
		Message: fmt.Sprintf("%q is both input and output; it will be truncated before it is read", p.RedirectIn),
	}
}

func checkOperatorInPath(in *Input) *Warning {
	p := in.Pipeline
	for _, path := range []string{p.RedirectIn, p.RedirectOut} {
		if strings.ContainsAny(path, operatorChars) {
			return &Warning{
				Message: fmt.Sprintf("path %q contains an operator; only the first '<' and '>' are recognised", path),
			}
		}
	}
	return nil
}

func checkEmbeddedBackground(in *Input) *Warning {
	if !in.Pipeline.Background {
		return nil
	}
	trimmed := strings.TrimRightFunc(in.Line, unicode.IsSpace)
	body := strings.TrimSuffix(trimmed, string(pipeline.OpBackground))
	if !strings.ContainsRune(body, pipeline.OpBackground) {
		return nil
	}
	return &Warning{
		Message: "'&' inside the line is kept as command text; only a trailing '&' is removed",
	}
}

func checkRedirectWithoutCommand(in *Input) *Warning {
	p := in.Pipeline
	if !p.Empty() || (!p.HasRedirectIn() && !p.HasRedirectOut()) {
		return nil
	}
	return &Warning{
		Message: "redirection without a command has no effect",
	}
}
