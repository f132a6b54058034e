package compiler

import "github.com/corintai/corint/internal/bytecode"

// EliminateDeadCode applies the opt-in compacting passes from §4.4.5 to an
// already-lowered instruction list:
//   - drop instructions after a Return or unconditional Jump up to the
//     next jump target (a "label"); never drops a labeled instruction
//   - collapse adjacent duplicate SetScore{v} / SetAction{a} (same value)
//   - remove no-ops: AddScore{0}, Jump{1} (jump to the very next instruction)
//
// This is the conservative style the spec explicitly allows ("simple
// implementations may skip elimination for programs containing any jump
// target the DCE is unaware of"): any instruction that is itself a jump
// target is never dropped, so every surviving jump's target always maps
// to a kept instruction and offsets can be recomputed by simple position
// remapping rather than general liveness analysis.
func EliminateDeadCode(instrs []bytecode.Instruction) []bytecode.Instruction {
	labels := collectJumpTargets(instrs)
	keep := make([]bool, len(instrs))
	for i := range keep {
		keep[i] = true
	}

	markDeadTails(instrs, labels, keep)
	markNoOps(instrs, labels, keep)
	markDuplicateSetters(instrs, labels, keep)

	return compact(instrs, keep)
}

func collectJumpTargets(instrs []bytecode.Instruction) map[int]bool {
	labels := make(map[int]bool)
	for i, in := range instrs {
		if isJump(in.Op) {
			labels[i+in.Offset] = true
		}
	}
	return labels
}

func isJump(op bytecode.Op) bool {
	return op == bytecode.OpJump || op == bytecode.OpJumpIfTrue || op == bytecode.OpJumpIfFalse
}

// markDeadTails marks every instruction following a Return or unconditional
// Jump as dead, until the next labeled instruction (which is reachable by
// construction and restarts the scan).
func markDeadTails(instrs []bytecode.Instruction, labels map[int]bool, keep []bool) {
	unreachable := false
	for i, in := range instrs {
		if labels[i] {
			unreachable = false
		}
		if unreachable {
			keep[i] = false
			continue
		}
		if in.Op == bytecode.OpReturn || in.Op == bytecode.OpJump {
			unreachable = true
		}
	}
}

func markNoOps(instrs []bytecode.Instruction, labels map[int]bool, keep []bool) {
	for i, in := range instrs {
		if !keep[i] || labels[i] {
			continue
		}
		switch {
		case in.Op == bytecode.OpAddScore && in.Score == 0:
			keep[i] = false
		case in.Op == bytecode.OpJump && in.Offset == 1:
			keep[i] = false
		}
	}
}

func markDuplicateSetters(instrs []bytecode.Instruction, labels map[int]bool, keep []bool) {
	lastKept := -1
	for i, in := range instrs {
		if !keep[i] {
			continue
		}
		if labels[i] {
			lastKept = i
			continue
		}
		if lastKept >= 0 && sameSetter(instrs[lastKept], in) {
			keep[i] = false
			continue
		}
		lastKept = i
	}
}

func sameSetter(a, b bytecode.Instruction) bool {
	if a.Op != b.Op {
		return false
	}
	switch a.Op {
	case bytecode.OpSetScore:
		return a.Score == b.Score
	case bytecode.OpSetAction:
		return a.Action == b.Action
	default:
		return false
	}
}

// compact drops every instruction with keep[i] == false and rewrites jump
// offsets against the new positions. Every jump target is guaranteed kept
// (labels are never dropped), so the remap is total.
func compact(instrs []bytecode.Instruction, keep []bool) []bytecode.Instruction {
	oldToNew := make(map[int]int, len(instrs))
	var newToOld []int
	out := make([]bytecode.Instruction, 0, len(instrs))
	for i, in := range instrs {
		if !keep[i] {
			continue
		}
		oldToNew[i] = len(out)
		newToOld = append(newToOld, i)
		out = append(out, in)
	}
	for newIdx, in := range out {
		if !isJump(in.Op) {
			continue
		}
		oldIdx := newToOld[newIdx]
		target := oldIdx + in.Offset
		newTarget, ok := oldToNew[target]
		if !ok {
			continue // target was never dropped in practice; defensive no-op
		}
		out[newIdx].Offset = newTarget - newIdx
	}
	return out
}
