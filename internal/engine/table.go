// Package engine ties the compiler and VM together into a running
// decision service: a read-mostly compiled-program table that swaps
// atomically on reload (§5), registry-based pipeline dispatch (§4.7), and
// the per-request orchestration that builds a value.Context, runs it
// through the VM, and shapes a result.DecisionResult.
package engine

import (
	"sync"

	"github.com/corintai/corint/internal/bytecode"
)

// ProgramTable holds every compiled rule/ruleset/pipeline program, keyed
// by id. It is read-only during request execution and swapped wholesale
// on Reload under a write lock, mirroring internal/registry.StatusCache's
// sync.RWMutex-guarded-map discipline — generalized from "mutate one
// entry" to "replace the whole table," since a CORINT reload recompiles
// every authored artifact together (a single id's program cannot be
// swapped in isolation without risking a stale cross-reference to a
// ruleset that changed alongside it).
type ProgramTable struct {
	mu        sync.RWMutex
	rulesets  map[string]*bytecode.Program
	pipelines map[string]*bytecode.Program
}

// NewProgramTable returns an empty table.
func NewProgramTable() *ProgramTable {
	return &ProgramTable{
		rulesets:  make(map[string]*bytecode.Program),
		pipelines: make(map[string]*bytecode.Program),
	}
}

// Reload atomically replaces the table's contents. Callers typically
// build rulesets/pipelines from scratch (compiling every rule, ruleset,
// and pipeline in a reloaded directory) and hand the complete maps here.
func (t *ProgramTable) Reload(rulesets, pipelines map[string]*bytecode.Program) {
	if rulesets == nil {
		rulesets = make(map[string]*bytecode.Program)
	}
	if pipelines == nil {
		pipelines = make(map[string]*bytecode.Program)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rulesets = rulesets
	t.pipelines = pipelines
}

// Ruleset implements vm.RulesetPrograms, backing CallRuleset.
func (t *ProgramTable) Ruleset(id string) (*bytecode.Program, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.rulesets[id]
	return p, ok
}

// Pipeline returns the compiled program for a top-level pipeline id.
func (t *ProgramTable) Pipeline(id string) (*bytecode.Program, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.pipelines[id]
	return p, ok
}
