package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/dani3/rash/internal/pipeline"
)

// Entry represents a single audit log record: one line read by the shell
// and what the parser made of it.
type Entry struct {
	Seq         uint64    `json:"seq"`
	Time        time.Time `json:"ts"`
	PrevHash    string    `json:"prev_hash"`
	Line        string    `json:"line"`                   // raw input line
	Commands    []string  `json:"commands"`               // command names in pipe order
	RedirectIn  string    `json:"redirect_in,omitempty"`  // stdin path, if any
	RedirectOut string    `json:"redirect_out,omitempty"` // stdout path, if any
	Background  bool      `json:"background,omitempty"`
	ErrorKind   string    `json:"error_kind,omitempty"` // parse error kind if the line was rejected
	Error       string    `json:"error,omitempty"`      // parse error message
	Warnings    []string  `json:"warnings,omitempty"`   // lint rule IDs that fired
	Duration    float64   `json:"duration_us"`          // parse time in microseconds
	Cwd         string    `json:"cwd"`                  // working directory
	Hash        string    `json:"hash"`                 // SHA-256 of this entry (with hash field empty)
}

// newEntry fills in what the line itself determines. Chain fields are set
// by the Logger.
func newEntry(line string, p *pipeline.Pipeline, parseErr error) Entry {
	e := Entry{Line: line, Commands: []string{}}
	if p != nil {
		e.Commands = p.Names()
		e.RedirectIn = p.RedirectIn
		e.RedirectOut = p.RedirectOut
		e.Background = p.Background
	}
	if parseErr != nil {
		e.Error = parseErr.Error()
		if kind, ok := pipeline.KindOf(parseErr); ok {
			e.ErrorKind = kind.String()
		}
	}
	return e
}

// digest is the SHA-256 of the entry's JSON encoding with Hash cleared.
func (e Entry) digest() string {
	e.Hash = ""
	data, _ := json.Marshal(e)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
