package compiler

import (
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/exprvm"
)

// emptyResolver never sees a lookup: FoldExpression only evaluates
// subtrees once every leaf has already folded down to a Literal.
var emptyResolver = exprvm.MapResolver(nil)

// FoldExpression recursively folds binary and unary operations when every
// leaf involved is a Literal, short-circuits a Ternary whose condition is
// a literal, and otherwise returns a structurally-equal tree with folded
// children. Division/Mod by zero deliberately fails to fold — evalBinary
// reports an error for it, which FoldExpression treats the same as any
// other non-foldable case and leaves the original expression in place so
// the VM raises the runtime error instead. List/Result access never
// folds, since their value depends on request-time state.
func FoldExpression(e ast.Expression) ast.Expression {
	switch v := e.(type) {
	case ast.Literal:
		return v

	case ast.FieldAccess:
		return v

	case ast.Unary:
		operand := FoldExpression(v.Operand)
		if lit, ok := operand.(ast.Literal); ok {
			if val, err := exprvm.Eval(ast.Unary{Op: v.Op, Operand: lit}, emptyResolver); err == nil {
				return ast.Literal{Value: val}
			}
		}
		return ast.Unary{Op: v.Op, Operand: operand}

	case ast.Binary:
		left := FoldExpression(v.Left)
		right := FoldExpression(v.Right)
		ll, lok := left.(ast.Literal)
		rl, rok := right.(ast.Literal)
		if lok && rok {
			if val, err := exprvm.Eval(ast.Binary{Left: ll, Op: v.Op, Right: rl}, emptyResolver); err == nil {
				return ast.Literal{Value: val}
			}
		}
		return ast.Binary{Left: left, Op: v.Op, Right: right}

	case ast.Ternary:
		cond := FoldExpression(v.Cond)
		if lit, ok := cond.(ast.Literal); ok {
			if lit.Value.Truthy() {
				return FoldExpression(v.Then)
			}
			return FoldExpression(v.Else)
		}
		return ast.Ternary{Cond: cond, Then: FoldExpression(v.Then), Else: FoldExpression(v.Else)}

	case ast.FunctionCall:
		args := make([]ast.Expression, len(v.Args))
		for i, a := range v.Args {
			args[i] = FoldExpression(a)
		}
		return ast.FunctionCall{Name: v.Name, Args: args}

	case ast.LogicalGroup:
		conds := make([]ast.Condition, len(v.Conditions))
		for i, c := range v.Conditions {
			conds[i] = FoldCondition(c)
		}
		return ast.LogicalGroup{Op: v.Op, Conditions: conds}

	case ast.ListReference, ast.ResultAccess:
		return v

	default:
		return v
	}
}

// FoldCondition applies FoldExpression through a Condition's bare
// expression or nested group.
func FoldCondition(c ast.Condition) ast.Condition {
	if c.IsExpr() {
		return ast.Condition{Expr: FoldExpression(c.Expr)}
	}
	children := make([]ast.Condition, len(c.Group.Children))
	for i, child := range c.Group.Children {
		children[i] = FoldCondition(child)
	}
	return ast.Condition{Group: &ast.ConditionGroup{Kind: c.Group.Kind, Children: children}}
}
