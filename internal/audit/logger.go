package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dani3/rash/internal/pipeline"
)

const genesisSeed = "rash-genesis"

// Logger appends hash-chained entries to a JSONL file. Each entry carries
// the hash of the one before it, so any edit or deletion breaks the chain.
// It is safe for concurrent use within one process.
type Logger struct {
	mu   sync.Mutex
	path string
	f    *os.File
	seq  uint64 // sequence number of the last entry written
	head string // hash of the last entry written
}

// NewLogger opens or creates the log at path and resumes its chain.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	seq, head, err := lastLink(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &Logger{path: path, f: f, seq: seq, head: head}, nil
}

// lastLink finds the entry the next one must chain from. Trailing lines
// that do not decode are ignored; Verify reports them.
func lastLink(path string) (uint64, string, error) {
	lines, err := readLines(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, genesisHash(), nil
	}
	if err != nil {
		return 0, "", err
	}
	for i := len(lines) - 1; i >= 0; i-- {
		var e Entry
		if json.Unmarshal(lines[i], &e) == nil {
			return e.Seq, e.Hash, nil
		}
	}
	return 0, genesisHash(), nil
}

// Log appends an entry for one input line. p is the parse result and
// parseErr the failure; exactly one of them is expected to be non-nil.
// The chain only advances once the entry is on disk.
func (l *Logger) Log(line string, p *pipeline.Pipeline, parseErr error, warnings []string, duration time.Duration, cwd string) error {
	e := newEntry(line, p, parseErr)
	e.Warnings = warnings
	e.Duration = float64(duration.Nanoseconds()) / 1e3
	e.Cwd = cwd

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return errors.New("audit log closed")
	}

	e.Seq = l.seq + 1
	e.Time = time.Now().UTC()
	e.PrevHash = l.head
	e.Hash = e.digest()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	if _, err := l.f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}

	l.seq, l.head = e.Seq, e.Hash
	return nil
}

// Path returns the audit log file path.
func (l *Logger) Path() string {
	return l.path
}

// Close releases the log file. Later calls to Log fail.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

func genesisHash() string {
	sum := sha256.Sum256([]byte(genesisSeed))
	return hex.EncodeToString(sum[:])
}

// splitLines returns the non-empty lines of data.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for _, ln := range bytes.Split(data, []byte{'\n'}) {
		if len(ln) > 0 {
			lines = append(lines, ln)
		}
	}
	return lines
}
