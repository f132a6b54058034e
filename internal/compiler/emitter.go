// Package compiler implements the code generator (C6): expression
// lowering with short-circuit logical groups, rule/ruleset/pipeline
// lowering with offset backfilling, and the opt-in constant-folding and
// dead-code-elimination passes.
package compiler

import "github.com/corintai/corint/internal/bytecode"

// emitter accumulates instructions and resolves placeholder jump offsets
// once the final instruction positions are known. A placeholder jump is
// emitted with offset 0 and its index returned so the caller can patch it
// later via patchTo — mirroring the "offset backfill" design note: jumps
// are relative to their own index, so patching must happen after layout.
type emitter struct {
	instrs []bytecode.Instruction
}

func newEmitter() *emitter { return &emitter{} }

// emit appends an instruction and returns its index.
func (e *emitter) emit(i bytecode.Instruction) int {
	e.instrs = append(e.instrs, i)
	return len(e.instrs) - 1
}

// pos returns the index the next emitted instruction will occupy.
func (e *emitter) pos() int { return len(e.instrs) }

// patchTo rewrites the jump instruction at idx so it lands at target,
// per the offset convention: offset = target - idx.
func (e *emitter) patchTo(idx, target int) {
	e.instrs[idx].Offset = target - idx
}

func (e *emitter) program() []bytecode.Instruction { return e.instrs }
