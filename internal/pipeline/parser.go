package pipeline

import (
	"strings"
	"unicode"
)

// Parse turns one input line into a Pipeline.
//
// Redirection clauses are located by the position of the first '<' and the
// first '>' in the line, so they may appear in either order after the last
// stage. The remaining text is split on '|' into stages and each stage on
// whitespace into a command name and its arguments. There is no quoting:
// a path containing '<', '>' or '|' is taken verbatim.
//
// An empty or blank line yields a Pipeline with no commands. Every other
// malformed line yields a *ParseError; Parse never guesses.
func Parse(line string) (*Pipeline, error) {
	p := &Pipeline{
		Background: strings.IndexByte(line, OpBackground) >= 0,
	}

	text := stripBackground(line)

	commands, r, err := extractRedirects(line, text)
	if err != nil {
		return nil, err
	}
	p.RedirectIn = r.in
	p.RedirectOut = r.out

	stages, err := splitStages(line, commands)
	if err != nil {
		return nil, err
	}

	p.Commands = make([]Command, 0, len(stages))
	for _, s := range stages {
		cmd, err := tokenize(line, s)
		if err != nil {
			return nil, err
		}
		p.Commands = append(p.Commands, cmd)
	}
	return p, nil
}

// stripBackground removes a trailing background marker so it cannot leak
// into a path or argument. A marker anywhere else is left in place.
func stripBackground(line string) string {
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	if n := len(trimmed); n > 0 && trimmed[n-1] == OpBackground {
		return trimmed[:n-1]
	}
	return line
}

type redirects struct {
	in  string
	out string
}

type clause struct {
	op   byte
	pos  int
	path string
}

// extractRedirects splits text into the commands substring and the
// redirection paths. text is a prefix of line, so offsets are shared.
func extractRedirects(line, text string) (string, redirects, error) {
	var r redirects
	posIn := strings.IndexByte(text, OpRedirectIn)
	posOut := strings.IndexByte(text, OpRedirectOut)

	var limit int
	switch {
	case posIn >= 0 && posOut >= 0 && posIn > posOut:
		// cat | grep .txt > output.txt < input.txt
		out, in, _ := strings.Cut(text[posOut+1:], string(OpRedirectIn))
		r.out, r.in = strings.TrimSpace(out), strings.TrimSpace(in)
		limit = posOut
	case posIn >= 0 && posOut >= 0:
		// cat | grep .txt < input.txt > output.txt
		in, out, _ := strings.Cut(text[posIn+1:], string(OpRedirectOut))
		r.in, r.out = strings.TrimSpace(in), strings.TrimSpace(out)
		limit = posIn
	case posIn >= 0:
		r.in = strings.TrimSpace(text[posIn+1:])
		limit = posIn
	case posOut >= 0:
		r.out = strings.TrimSpace(text[posOut+1:])
		limit = posOut
	default:
		return text, r, nil
	}

	// Report the leftmost bad clause first.
	clauses := [2]clause{
		{op: OpRedirectIn, pos: posIn, path: r.in},
		{op: OpRedirectOut, pos: posOut, path: r.out},
	}
	if posOut >= 0 && (posIn < 0 || posOut < posIn) {
		clauses[0], clauses[1] = clauses[1], clauses[0]
	}
	for _, c := range clauses {
		if c.pos >= 0 && c.path == "" {
			return "", redirects{}, newParseError(MalformedRedirection, line, c.pos,
				"missing file path after '%c'", c.op)
		}
	}

	return text[:limit], r, nil
}

type stage struct {
	text string
	pos  int
}

// splitStages splits the commands substring on '|'. A blank substring is
// an empty pipeline; a blank stage inside a non-blank substring is an error.
func splitStages(line, commands string) ([]stage, error) {
	if strings.TrimSpace(commands) == "" {
		return nil, nil
	}

	var stages []stage
	start := 0
	for {
		end := len(commands)
		i := strings.IndexByte(commands[start:], OpPipe)
		if i >= 0 {
			end = start + i
		}

		part := commands[start:end]
		text := strings.TrimSpace(part)
		if text == "" {
			if start == 0 {
				return nil, newParseError(EmptyCommandToken, line, end,
					"missing command before '%c'", OpPipe)
			}
			return nil, newParseError(EmptyCommandToken, line, start-1,
				"missing command after '%c'", OpPipe)
		}
		stages = append(stages, stage{text: text, pos: start + strings.Index(part, text)})

		if i < 0 {
			return stages, nil
		}
		start = end + 1
	}
}

// tokenize splits a stage on runs of whitespace. The first token is the
// command name.
func tokenize(line string, s stage) (Command, error) {
	fields := strings.Fields(s.text)
	if len(fields) == 0 {
		return Command{}, newParseError(EmptyCommandToken, line, s.pos, "empty command")
	}
	return Command{Name: fields[0], Args: fields[1:]}, nil
}
