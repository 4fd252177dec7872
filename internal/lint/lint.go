// Package lint reports suspicious but parseable lines. It never changes
// what the parser produced; it only attaches warnings.
package lint

import (
	"sync"

	"github.com/dani3/rash/internal/pipeline"
)

// Input is what every rule sees: the raw line and its parse result.
type Input struct {
	Line     string
	Pipeline *pipeline.Pipeline
}

// Warning is a single finding.
type Warning struct {
	RuleID  string `json:"rule" yaml:"rule"`
	Message string `json:"message" yaml:"message"`
}

// Rule is a named, testable check.
type Rule struct {
	ID          string
	Description string
	Check       func(in *Input) *Warning // nil = nothing to report
}

// Engine holds an ordered list of rules. Built-in rules run first, rules
// added later run after them in insertion order.
type Engine struct {
	mu       sync.RWMutex
	rules    []Rule
	disabled map[string]bool
}

// NewEngine creates an engine with the built-in rules followed by extra.
func NewEngine(extra ...Rule) *Engine {
	e := &Engine{disabled: make(map[string]bool)}
	e.rules = append(e.rules, Builtin()...)
	e.rules = append(e.rules, extra...)
	return e
}

// Add appends a rule.
func (e *Engine) Add(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, r)
}

// Disable turns off the rules with the given IDs. Unknown IDs are ignored.
func (e *Engine) Disable(ids ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		e.disabled[id] = true
	}
}

// Rules returns the enabled rules in evaluation order.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rules := make([]Rule, 0, len(e.rules))
	for _, r := range e.rules {
		if !e.disabled[r.ID] {
			rules = append(rules, r)
		}
	}
	return rules
}

// Check runs every enabled rule against a parsed line.
func (e *Engine) Check(line string, p *pipeline.Pipeline) []Warning {
	if p == nil {
		return nil
	}
	in := &Input{Line: line, Pipeline: p}
	var warnings []Warning
	for _, r := range e.Rules() {
		if w := r.Check(in); w != nil {
			if w.RuleID == "" {
				w.RuleID = r.ID
			}
			warnings = append(warnings, *w)
		}
	}
	return warnings
}

// RuleIDs returns the rule IDs of the given warnings, in order.
func RuleIDs(warnings []Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	ids := make([]string, len(warnings))
	for i, w := range warnings {
		ids[i] = w.RuleID
	}
	return ids
}
