package audit

import (
	"encoding/json"
	"fmt"
	"os"
)

// Verify reads the audit log and checks the hash chain integrity.
// It returns the number of verified entries, or an error describing the
// first violation.
func Verify(path string) (int, error) {
	lines, err := readLines(path)
	if err != nil {
		return 0, err
	}

	expectedPrev := genesisHash()
	var prevSeq uint64

	for i, line := range lines {
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return i, fmt.Errorf("line %d: invalid JSON: %w", i+1, err)
		}
		if entry.Seq != prevSeq+1 {
			return i, fmt.Errorf("line %d: sequence gap: expected %d, got %d", i+1, prevSeq+1, entry.Seq)
		}
		if entry.PrevHash != expectedPrev {
			return i, fmt.Errorf("line %d: prev_hash mismatch: expected %s, got %s", i+1, short(expectedPrev), short(entry.PrevHash))
		}
		if computed := entry.digest(); entry.Hash != computed {
			return i, fmt.Errorf("line %d: hash mismatch: expected %s, got %s", i+1, short(computed), short(entry.Hash))
		}
		expectedPrev = entry.Hash
		prevSeq = entry.Seq
	}

	return len(lines), nil
}

// Tail returns the last n entries from the audit log. Lines that are not
// valid entries are skipped.
func Tail(path string, n int) ([]Entry, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	if n > len(lines) {
		n = len(lines)
	}

	entries := make([]Entry, 0, n)
	for _, line := range lines[len(lines)-n:] {
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Stats summarises an audit log.
type Stats struct {
	Lines      int            `json:"lines"`
	Parsed     int            `json:"parsed"`
	Rejected   map[string]int `json:"rejected"` // by error kind
	Background int            `json:"background"`
	Warnings   map[string]int `json:"warnings"` // by lint rule ID
}

// Summarize reads every entry in the log and counts outcomes.
func Summarize(path string) (*Stats, error) {
	entries, err := Tail(path, int(^uint(0)>>1))
	if err != nil {
		return nil, err
	}
	s := &Stats{
		Rejected: make(map[string]int),
		Warnings: make(map[string]int),
	}
	for _, e := range entries {
		s.Lines++
		if e.Error != "" {
			kind := e.ErrorKind
			if kind == "" {
				kind = "unknown"
			}
			s.Rejected[kind]++
			continue
		}
		s.Parsed++
		if e.Background {
			s.Background++
		}
		for _, id := range e.Warnings {
			s.Warnings[id]++
		}
	}
	return s, nil
}

func readLines(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return splitLines(data), nil
}

func short(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}
