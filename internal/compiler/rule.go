package compiler

import (
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
)

// CompileRule lowers a Rule per §4.4.2:
//  1. optional CheckEventType{expected} when when.event_type is set
//  2. condition lowering (legacy list -> chained BinaryOp{And}; condition_group -> §4.4.1)
//  3. if any condition instructions were emitted, JumpIfFalse{+3} onto the Return, skipping steps 4 and 5
//  4. AddScore{rule.score}
//  5. MarkRuleTriggered{rule.id}
//  6. Return
func CompileRule(r ast.Rule) (*bytecode.Program, error) {
	em := newEmitter()

	if r.When.EventType != "" {
		em.emit(bytecode.Instruction{Op: bytecode.OpCheckEventType, Expected: r.When.EventType})
	}

	before := em.pos()
	if err := lowerRuleGuard(r.When, em); err != nil {
		return nil, err
	}
	if em.pos() > before {
		em.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse, Offset: 3})
	}

	em.emit(bytecode.Instruction{Op: bytecode.OpAddScore, Score: float64(r.Score)})
	em.emit(bytecode.Instruction{Op: bytecode.OpMarkRuleTriggered, RuleID: r.ID})
	em.emit(bytecode.Instruction{Op: bytecode.OpReturn})

	return &bytecode.Program{
		Instructions: em.program(),
		SourceType:   bytecode.SourceRule,
		SourceID:     r.ID,
		Name:         r.Name,
		Meta: map[string]string{
			"rule_id":     r.ID,
			"name":        r.Name,
			"description": r.Description,
			"event_type":  r.When.EventType,
		},
	}, nil
}

// lowerRuleGuard lowers a When block's non-event-type constraints: an
// explicit condition_group per §4.4.1, or a legacy conditions list joined
// as a chained BinaryOp{And}. Emits nothing when the guard carries no
// conditions at all.
func lowerRuleGuard(w ast.WhenBlock, em *emitter) error {
	if w.ConditionGroup != nil {
		return lowerCondition(ast.Condition{Group: w.ConditionGroup}, em)
	}
	if len(w.Conditions) == 0 {
		return nil
	}
	if len(w.Conditions) == 1 {
		return lowerCondition(w.Conditions[0], em)
	}
	if err := lowerCondition(w.Conditions[0], em); err != nil {
		return err
	}
	for _, c := range w.Conditions[1:] {
		if err := lowerCondition(c, em); err != nil {
			return err
		}
		em.emit(bytecode.Instruction{Op: bytecode.OpBinaryOp, BinOp: int(ast.OpAnd)})
	}
	return nil
}
