package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dani3/rash/internal/audit"
)

// RunAudit handles the rash audit subcommand.
func RunAudit(w io.Writer, logPath string, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(w, "usage: rash audit <verify|show|tail [n]|stats>")
		return 1
	}

	switch args[0] {
	case "verify":
		n, err := audit.Verify(logPath)
		if err != nil {
			fmt.Fprintf(w, "audit verification FAILED after %d entries: %v\n", n, err)
			return 1
		}
		fmt.Fprintf(w, "audit log integrity verified (%d entries)\n", n)
		return 0

	case "show", "tail":
		n := 20
		if len(args) > 1 {
			v, err := strconv.Atoi(args[1])
			if err != nil || v <= 0 {
				fmt.Fprintf(w, "rash audit: invalid count %q\n", args[1])
				return 1
			}
			n = v
		}
		entries, err := audit.Tail(logPath, n)
		if err != nil {
			fmt.Fprintf(w, "rash audit: %v\n", err)
			return 1
		}
		if len(entries) == 0 {
			fmt.Fprintln(w, "no audit entries")
			return 0
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				fmt.Fprintf(w, "rash audit: %v\n", err)
				return 1
			}
		}
		return 0

	case "stats":
		s, err := audit.Summarize(logPath)
		if err != nil {
			fmt.Fprintf(w, "rash audit: %v\n", err)
			return 1
		}
		fmt.Fprintf(w, "lines:      %d\n", s.Lines)
		fmt.Fprintf(w, "parsed:     %d\n", s.Parsed)
		fmt.Fprintf(w, "background: %d\n", s.Background)
		printCounts(w, "rejected", s.Rejected)
		printCounts(w, "warnings", s.Warnings)
		return 0

	default:
		fmt.Fprintf(w, "rash audit: unknown subcommand %q\n", args[0])
		return 1
	}
}

func printCounts(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "  %-24s %d\n", k, counts[k])
	}
}
