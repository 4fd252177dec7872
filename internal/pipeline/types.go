package pipeline

// Operators recognised in an input line. Each is a single byte and is found
// by position scanning, not by a lexer.
const (
	OpPipe        = '|' // stdout of the left stage feeds stdin of the right stage
	OpRedirectIn  = '<' // redirect stdin of the first stage from a file
	OpRedirectOut = '>' // redirect stdout of the last stage to a file
	OpBackground  = '&' // run without waiting for completion
)

// Command is a single executable invocation within a pipeline.
type Command struct {
	Name string   `json:"name" yaml:"name"` // executable token, never empty
	Args []string `json:"args" yaml:"args"` // remaining tokens, left to right
}

// Pipeline is the parse result for one input line. It is built once by
// Parse and should be treated as read-only afterwards.
type Pipeline struct {
	Commands    []Command `json:"commands" yaml:"commands"`
	RedirectIn  string    `json:"redirect_in,omitempty" yaml:"redirect_in,omitempty"`   // file path for stdin, empty if none
	RedirectOut string    `json:"redirect_out,omitempty" yaml:"redirect_out,omitempty"` // file path for stdout, empty if none
	Background  bool      `json:"background" yaml:"background"`
}

// HasRedirectIn reports whether an input redirection clause was present.
// Parse rejects empty paths, so presence and a non-empty path coincide.
func (p *Pipeline) HasRedirectIn() bool { return p.RedirectIn != "" }

// HasRedirectOut reports whether an output redirection clause was present.
func (p *Pipeline) HasRedirectOut() bool { return p.RedirectOut != "" }

// Empty reports whether the line contained no commands.
func (p *Pipeline) Empty() bool { return len(p.Commands) == 0 }

// Names returns the executable names in pipe order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.Commands))
	for i, c := range p.Commands {
		names[i] = c.Name
	}
	return names
}

// Clone returns a deep copy that the caller may modify freely.
func (p *Pipeline) Clone() *Pipeline {
	c := *p
	c.Commands = make([]Command, len(p.Commands))
	for i, cmd := range p.Commands {
		c.Commands[i] = Command{
			Name: cmd.Name,
			Args: append([]string{}, cmd.Args...),
		}
	}
	return &c
}
