package pipeline

import "strings"

// String joins the name and arguments with single spaces.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// String reconstructs a line that parses back to an equal Pipeline, provided
// no token or path contains an operator character.
func (p *Pipeline) String() string {
	var b strings.Builder
	for i, c := range p.Commands {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(c.String())
	}

	sep := func() {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
	}
	if p.HasRedirectIn() {
		sep()
		b.WriteString("< " + p.RedirectIn)
	}
	if p.HasRedirectOut() {
		sep()
		b.WriteString("> " + p.RedirectOut)
	}
	if p.Background {
		sep()
		b.WriteByte(OpBackground)
	}
	return b.String()
}
