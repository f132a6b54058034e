package compiler

import (
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
)

// CompileRuleset lowers a Ruleset per §4.4.3: for each listed rule id,
// emit CallRuleset{rule_id}; then evaluate the conclusion list in order.
// Each branch lowers to condition; JumpIfFalse->next; SetSignal/SetAction;
// then Return if terminate, otherwise Jump->end. A default branch is the unconditional
// tail sequence.
func CompileRuleset(rs ast.Ruleset) (*bytecode.Program, error) {
	em := newEmitter()

	for _, ruleID := range rs.RuleIDs {
		em.emit(bytecode.Instruction{Op: bytecode.OpCallRuleset, RuleID: ruleID})
	}

	var endJumps []int
	for _, branch := range rs.Conclusion {
		var jf = -1
		if !branch.Default {
			if err := lowerCondition(branch.Condition, em); err != nil {
				return nil, err
			}
			jf = em.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse})
		}

		emitConclusionAction(em, branch)

		if branch.Terminate {
			em.emit(bytecode.Instruction{Op: bytecode.OpReturn})
		} else {
			endJumps = append(endJumps, em.emit(bytecode.Instruction{Op: bytecode.OpJump}))
		}

		if jf >= 0 {
			em.patchTo(jf, em.pos())
		}
	}

	em.emit(bytecode.Instruction{Op: bytecode.OpReturn})
	end := em.pos()
	for _, idx := range endJumps {
		em.patchTo(idx, end)
	}

	return &bytecode.Program{
		Instructions: em.program(),
		SourceType:   bytecode.SourceRuleset,
		SourceID:     rs.ID,
		Name:         rs.Name,
		Meta: map[string]string{
			"ruleset_id":  rs.ID,
			"name":        rs.Name,
			"description": rs.Description,
		},
	}, nil
}

// emitConclusionAction emits the SetSignal/SetAction pair for a conclusion
// branch's Signal, plus a reason note carried as an Explain-equivalent
// SetAction context — the VM records Reason into the Result explanation
// when it executes SetAction.
func emitConclusionAction(em *emitter, branch ast.ConclusionBranch) {
	em.emit(bytecode.Instruction{Op: bytecode.OpSetSignal, Signal: branch.Action.Kind.String()})
	if branch.Action.Kind == ast.SignalInfer && branch.Action.InferCfg != nil {
		em.emit(bytecode.Instruction{
			Op:       bytecode.OpCallLLM,
			Provider: branch.Action.InferCfg.Provider,
			Model:    branch.Action.InferCfg.Model,
			Prompt:   branch.Action.InferCfg.Prompt,
		})
	}
	em.emit(bytecode.Instruction{Op: bytecode.OpSetAction, Action: branch.Reason})
}
