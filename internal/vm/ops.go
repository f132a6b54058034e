package vm

import (
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/exprvm"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/pkg/corinterr"
)

// applyCompare implements the Compare opcode: Eq/Ne/Lt/Gt/Le/Ge over two
// already-popped operand-stack values. Delegates to exprvm's operator
// semantics rather than re-deriving comparison rules, since the VM and the
// tree-walking evaluator must agree on every operator's behavior.
func applyCompare(binOp int, left, right value.Value) (value.Value, error) {
	v, err := exprvm.EvalCompareValues(ast.Operator(binOp), left, right)
	if err != nil {
		return nil, corinterr.NewTypeError("comparable operands", err.Error())
	}
	return v, nil
}

// applyBinaryOp implements the BinaryOp opcode. And/Or are handled here
// directly rather than through exprvm: by the time BinaryOp runs, both
// operands have already been unconditionally evaluated and popped (the
// compiler's legacy-condition-list chaining produces exactly this shape —
// see design note on "folded-value" And/Or chains), so there is nothing
// left to short-circuit.
func applyBinaryOp(binOp int, left, right value.Value) (value.Value, error) {
	op := ast.Operator(binOp)
	switch op {
	case ast.OpAnd:
		return value.Bool(left.Truthy() && right.Truthy()), nil
	case ast.OpOr:
		return value.Bool(left.Truthy() || right.Truthy()), nil
	}
	v, err := exprvm.EvalArithValues(op, left, right)
	if err != nil {
		return nil, corinterr.NewInvalidOperation(err.Error())
	}
	return v, nil
}

// applyUnaryOp implements the UnaryOp opcode (Not/Negate).
func applyUnaryOp(unOp int, v value.Value) (value.Value, error) {
	result, err := exprvm.EvalUnaryValue(ast.UnaryOperator(unOp), v)
	if err != nil {
		return nil, corinterr.NewTypeError("numeric operand", err.Error())
	}
	return result, nil
}
