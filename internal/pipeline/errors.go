package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a parse failure.
type ErrorKind int

const (
	// EmptyCommandToken: a pipeline stage has no executable token, e.g.
	// "a || b", "a |" or "| a".
	EmptyCommandToken ErrorKind = iota + 1

	// MalformedRedirection: a redirection operator is present but the
	// extracted path is empty, e.g. "cmd >".
	MalformedRedirection

	// UnbalancedRedirection is reserved for stricter validation. Parse
	// currently reports these cases as MalformedRedirection.
	UnbalancedRedirection
)

// Sentinel errors matched by errors.Is against a *ParseError.
var (
	ErrEmptyCommandToken     = errors.New("empty command")
	ErrMalformedRedirection  = errors.New("malformed redirection")
	ErrUnbalancedRedirection = errors.New("unbalanced redirection")
)

func (k ErrorKind) String() string {
	switch k {
	case EmptyCommandToken:
		return "EmptyCommandToken"
	case MalformedRedirection:
		return "MalformedRedirection"
	case UnbalancedRedirection:
		return "UnbalancedRedirection"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case EmptyCommandToken:
		return ErrEmptyCommandToken
	case MalformedRedirection:
		return ErrMalformedRedirection
	case UnbalancedRedirection:
		return ErrUnbalancedRedirection
	default:
		return nil
	}
}

// ParseError describes why a line could not be parsed. Pos is the byte
// offset in Line of the operator or stage at fault.
type ParseError struct {
	Kind ErrorKind
	Line string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at column %d", e.Msg, e.Pos+1)
}

func (e *ParseError) Unwrap() error {
	return e.Kind.sentinel()
}

// KindOf returns the ErrorKind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

func newParseError(kind ErrorKind, line string, pos int, format string, args ...any) *ParseError {
	return &ParseError{
		Kind: kind,
		Line: line,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
	}
}
