package compiler

import (
	"fmt"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/value"
)

func boolValue(b bool) value.Value { return value.Bool(b) }

// lowerExpr performs a post-order walk, leaving exactly one Value on the
// stack (the "expressions leave exactly one Value" discipline).
func lowerExpr(e ast.Expression, em *emitter) error {
	switch v := e.(type) {
	case ast.Literal:
		em.emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: v.Value})
		return nil

	case ast.FieldAccess:
		em.emit(bytecode.Instruction{Op: bytecode.OpLoadField, Path: v.Path})
		return nil

	case ast.Binary:
		if err := lowerExpr(v.Left, em); err != nil {
			return err
		}
		if err := lowerExpr(v.Right, em); err != nil {
			return err
		}
		if v.Op.IsComparison() {
			em.emit(bytecode.Instruction{Op: bytecode.OpCompare, BinOp: int(v.Op)})
		} else {
			em.emit(bytecode.Instruction{Op: bytecode.OpBinaryOp, BinOp: int(v.Op)})
		}
		return nil

	case ast.Unary:
		if err := lowerExpr(v.Operand, em); err != nil {
			return err
		}
		em.emit(bytecode.Instruction{Op: bytecode.OpUnaryOp, UnOp: int(v.Op)})
		return nil

	case ast.FunctionCall:
		for _, arg := range v.Args {
			if err := lowerExpr(arg, em); err != nil {
				return err
			}
		}
		em.emit(bytecode.Instruction{Op: bytecode.OpCallBuiltin, FuncName: v.Name, ArgCount: len(v.Args)})
		return nil

	case ast.Ternary:
		if err := lowerExpr(v.Cond, em); err != nil {
			return err
		}
		jf := em.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse})
		if err := lowerExpr(v.Then, em); err != nil {
			return err
		}
		jEnd := em.emit(bytecode.Instruction{Op: bytecode.OpJump})
		em.patchTo(jf, em.pos())
		if err := lowerExpr(v.Else, em); err != nil {
			return err
		}
		em.patchTo(jEnd, em.pos())
		return nil

	case ast.LogicalGroup:
		return lowerLogicalConditions(v.Conditions, v.Op == ast.LogicalAll, em)

	case ast.ListReference:
		em.emit(bytecode.Instruction{Op: bytecode.OpLoadField, Path: []string{"lists", v.ListID}})
		return nil

	case ast.ResultAccess:
		path := []string{"result"}
		if v.RulesetID != "" {
			path = append(path, v.RulesetID)
		}
		path = append(path, v.Field)
		em.emit(bytecode.Instruction{Op: bytecode.OpLoadField, Path: path})
		return nil

	default:
		return fmt.Errorf("compiler: unhandled expression node %T", e)
	}
}

// lowerCondition lowers a Condition (bare expression or nested group),
// leaving exactly one boolean Value on the stack.
func lowerCondition(c ast.Condition, em *emitter) error {
	if c.IsExpr() {
		return lowerExpr(c.Expr, em)
	}
	switch c.Group.Kind {
	case ast.GroupAll:
		return lowerLogicalConditions(c.Group.Children, true, em)
	case ast.GroupAny:
		return lowerLogicalConditions(c.Group.Children, false, em)
	case ast.GroupNot:
		if len(c.Group.Children) != 1 {
			return fmt.Errorf("compiler: not group requires exactly one child")
		}
		if err := lowerCondition(c.Group.Children[0], em); err != nil {
			return err
		}
		em.emit(bytecode.Instruction{Op: bytecode.OpUnaryOp, UnOp: int(ast.OpNot)})
		return nil
	default:
		return fmt.Errorf("compiler: unknown condition group kind")
	}
}

// lowerLogicalConditions lowers an Any/All short-circuit group per
// §4.4.1: empty Any -> LoadConst false, empty All -> LoadConst true;
// single-item groups degrade to the inner condition; otherwise each
// non-final condition emits Dup/JumpIf*/Pop and the final condition is
// emitted alone, with jump offsets backfilled once the end index is known.
func lowerLogicalConditions(children []ast.Condition, all bool, em *emitter) error {
	n := len(children)
	if n == 0 {
		em.emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: boolValue(all)})
		return nil
	}
	if n == 1 {
		return lowerCondition(children[0], em)
	}

	var jumps []int
	for i, child := range children {
		if err := lowerCondition(child, em); err != nil {
			return err
		}
		if i == n-1 {
			break
		}
		em.emit(bytecode.Instruction{Op: bytecode.OpDup})
		var jidx int
		if all {
			jidx = em.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse})
		} else {
			jidx = em.emit(bytecode.Instruction{Op: bytecode.OpJumpIfTrue})
		}
		em.emit(bytecode.Instruction{Op: bytecode.OpPop})
		jumps = append(jumps, jidx)
	}
	end := em.pos()
	for _, idx := range jumps {
		em.patchTo(idx, end)
	}
	return nil
}
