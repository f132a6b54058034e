// Package exprvm is a tree-walking evaluator over ast.Expression and
// ast.Condition, independent of the bytecode VM. It exists to break an
// import cycle: CallFeature's optional filter_expression must be
// evaluated once per historical record inside the feature extractor, and
// the feature extractor must not depend on internal/vm (which itself
// dispatches CallFeature). Both internal/vm and internal/feature import
// exprvm instead of each other.
package exprvm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/value"
)

// FieldResolver resolves a dotted path to a Value, analogous to the VM's
// LoadField semantics but scoped to whatever record the caller supplies —
// a single historical event's field map, for example.
type FieldResolver interface {
	Resolve(path []string) value.Value
}

// MapResolver adapts a flat field map (as produced by the event-history
// collaborator) into a FieldResolver. A multi-segment path descends
// through nested Objects; a missing key or a non-Object intermediate
// resolves to Null.
type MapResolver map[string]value.Value

func (m MapResolver) Resolve(path []string) value.Value {
	if len(path) == 0 {
		return value.Null{}
	}
	v, ok := m[path[0]]
	if !ok {
		return value.Null{}
	}
	if len(path) == 1 {
		return v
	}
	obj, ok := v.(value.Object)
	if !ok {
		return value.Null{}
	}
	return MapResolver(obj).Resolve(path[1:])
}

// Eval evaluates an expression tree against resolver, returning the
// resulting Value or an error on a genuine evaluation fault (unknown
// function, non-numeric arithmetic operand, and so on).
func Eval(expr ast.Expression, resolver FieldResolver) (value.Value, error) {
	switch e := expr.(type) {
	case ast.Literal:
		return e.Value, nil
	case ast.FieldAccess:
		return resolver.Resolve(e.Path), nil
	case ast.Unary:
		return evalUnary(e, resolver)
	case ast.Binary:
		return evalBinary(e, resolver)
	case ast.Ternary:
		cond, err := Eval(e.Cond, resolver)
		if err != nil {
			return nil, err
		}
		if cond.Truthy() {
			return Eval(e.Then, resolver)
		}
		return Eval(e.Else, resolver)
	case ast.LogicalGroup:
		return evalLogicalGroup(e, resolver)
	case ast.FunctionCall:
		return nil, fmt.Errorf("exprvm: unsupported function %q", e.Name)
	case ast.ListReference, ast.ResultAccess:
		// Neither a list backend nor the decision accumulator is in scope
		// for a per-record filter expression; both resolve to Null.
		return value.Null{}, nil
	default:
		return nil, fmt.Errorf("exprvm: unhandled expression node %T", expr)
	}
}

// EvalCondition evaluates a parsed Condition (bare expression or nested
// group) to a boolean.
func EvalCondition(c ast.Condition, resolver FieldResolver) (bool, error) {
	if c.IsExpr() {
		v, err := Eval(c.Expr, resolver)
		if err != nil {
			return false, err
		}
		return v.Truthy(), nil
	}
	return evalGroup(*c.Group, resolver)
}

func evalGroup(g ast.ConditionGroup, resolver FieldResolver) (bool, error) {
	switch g.Kind {
	case ast.GroupAll:
		for _, c := range g.Children {
			ok, err := EvalCondition(c, resolver)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case ast.GroupAny:
		for _, c := range g.Children {
			ok, err := EvalCondition(c, resolver)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case ast.GroupNot:
		if len(g.Children) != 1 {
			return false, fmt.Errorf("exprvm: not group requires exactly one child")
		}
		ok, err := EvalCondition(g.Children[0], resolver)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default:
		return false, fmt.Errorf("exprvm: unknown condition group kind")
	}
}

func evalLogicalGroup(e ast.LogicalGroup, resolver FieldResolver) (value.Value, error) {
	switch e.Op {
	case ast.LogicalAny:
		for _, c := range e.Conditions {
			ok, err := EvalCondition(c, resolver)
			if err != nil {
				return nil, err
			}
			if ok {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case ast.LogicalAll:
		for _, c := range e.Conditions {
			ok, err := EvalCondition(c, resolver)
			if err != nil {
				return nil, err
			}
			if !ok {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	default:
		return nil, fmt.Errorf("exprvm: unknown logical op")
	}
}

func evalUnary(e ast.Unary, resolver FieldResolver) (value.Value, error) {
	v, err := Eval(e.Operand, resolver)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.OpNot:
		return value.Bool(!v.Truthy()), nil
	case ast.OpNegate:
		n, ok := v.(value.Number)
		if !ok {
			return nil, fmt.Errorf("exprvm: cannot negate non-number %s", v.Kind())
		}
		return -n, nil
	default:
		return nil, fmt.Errorf("exprvm: unknown unary op")
	}
}

func evalBinary(e ast.Binary, resolver FieldResolver) (value.Value, error) {
	left, err := Eval(e.Left, resolver)
	if err != nil {
		return nil, err
	}

	// Short-circuit And/Or without evaluating the right side eagerly.
	if e.Op == ast.OpAnd {
		if !left.Truthy() {
			return value.Bool(false), nil
		}
		right, err := Eval(e.Right, resolver)
		if err != nil {
			return nil, err
		}
		return value.Bool(right.Truthy()), nil
	}
	if e.Op == ast.OpOr {
		if left.Truthy() {
			return value.Bool(true), nil
		}
		right, err := Eval(e.Right, resolver)
		if err != nil {
			return nil, err
		}
		return value.Bool(right.Truthy()), nil
	}

	right, err := Eval(e.Right, resolver)
	if err != nil {
		return nil, err
	}

	if e.Op.IsComparison() {
		return evalCompare(e.Op, left, right)
	}
	return evalArithOrString(e.Op, left, right)
}

// EvalCompareValues applies a comparison operator to two already-resolved
// Values. Exported so the bytecode VM's Compare opcode can share this
// operator semantics instead of re-deriving it, without requiring the VM
// to depend on expression trees at all.
func EvalCompareValues(op ast.Operator, left, right value.Value) (value.Value, error) {
	return evalCompare(op, left, right)
}

// EvalArithValues applies an arithmetic/string/membership operator to two
// already-resolved Values, mirroring EvalCompareValues for the VM's
// BinaryOp opcode.
func EvalArithValues(op ast.Operator, left, right value.Value) (value.Value, error) {
	return evalArithOrString(op, left, right)
}

// EvalUnaryValue applies a unary operator to an already-resolved Value.
func EvalUnaryValue(op ast.UnaryOperator, v value.Value) (value.Value, error) {
	switch op {
	case ast.OpNot:
		return value.Bool(!v.Truthy()), nil
	case ast.OpNegate:
		n, ok := v.(value.Number)
		if !ok {
			return nil, fmt.Errorf("exprvm: cannot negate non-number %s", v.Kind())
		}
		return -n, nil
	default:
		return nil, fmt.Errorf("exprvm: unknown unary op")
	}
}

func evalCompare(op ast.Operator, left, right value.Value) (value.Value, error) {
	switch op {
	case ast.OpEq:
		return value.Bool(value.Equal(left, right)), nil
	case ast.OpNe:
		return value.Bool(!value.Equal(left, right)), nil
	}
	ln, lok := left.(value.Number)
	rn, rok := right.(value.Number)
	if lok && rok {
		switch op {
		case ast.OpLt:
			return value.Bool(ln < rn), nil
		case ast.OpGt:
			return value.Bool(ln > rn), nil
		case ast.OpLe:
			return value.Bool(ln <= rn), nil
		case ast.OpGe:
			return value.Bool(ln >= rn), nil
		}
	}
	ls, lsok := left.(value.String)
	rs, rsok := right.(value.String)
	if lsok && rsok {
		switch op {
		case ast.OpLt:
			return value.Bool(ls < rs), nil
		case ast.OpGt:
			return value.Bool(ls > rs), nil
		case ast.OpLe:
			return value.Bool(ls <= rs), nil
		case ast.OpGe:
			return value.Bool(ls >= rs), nil
		}
	}
	return nil, fmt.Errorf("exprvm: cannot compare %s with %s using %s", left.Kind(), right.Kind(), op)
}

func evalArithOrString(op ast.Operator, left, right value.Value) (value.Value, error) {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		ln, lok := left.(value.Number)
		rn, rok := right.(value.Number)
		if !lok || !rok {
			if op == ast.OpAdd {
				ls, lsok := left.(value.String)
				rs, rsok := right.(value.String)
				if lsok && rsok {
					return value.String(string(ls) + string(rs)), nil
				}
			}
			return nil, fmt.Errorf("exprvm: arithmetic requires numbers, got %s and %s", left.Kind(), right.Kind())
		}
		switch op {
		case ast.OpAdd:
			return ln + rn, nil
		case ast.OpSub:
			return ln - rn, nil
		case ast.OpMul:
			return ln * rn, nil
		case ast.OpDiv:
			if rn == 0 {
				return nil, fmt.Errorf("exprvm: division by zero")
			}
			return ln / rn, nil
		case ast.OpMod:
			if rn == 0 {
				return nil, fmt.Errorf("exprvm: modulo by zero")
			}
			li, ri := int64(ln), int64(rn)
			return value.Number(li % ri), nil
		}
	case ast.OpContains:
		return stringPredicate(left, right, strings.Contains)
	case ast.OpStartsWith:
		return stringPredicate(left, right, strings.HasPrefix)
	case ast.OpEndsWith:
		return stringPredicate(left, right, strings.HasSuffix)
	case ast.OpRegex:
		rs, ok := right.(value.String)
		if !ok {
			return nil, fmt.Errorf("exprvm: matches requires a string pattern")
		}
		re, err := regexp.Compile(string(rs))
		if err != nil {
			return nil, fmt.Errorf("exprvm: invalid regex %q: %w", rs, err)
		}
		return value.Bool(re.MatchString(left.String())), nil
	case ast.OpIn, ast.OpInList:
		return value.Bool(memberOf(left, right)), nil
	case ast.OpNotIn, ast.OpNotInList:
		return value.Bool(!memberOf(left, right)), nil
	}
	return nil, fmt.Errorf("exprvm: unsupported operator %s", op)
}

func stringPredicate(left, right value.Value, pred func(s, substr string) bool) (value.Value, error) {
	ls, lok := left.(value.String)
	rs, rok := right.(value.String)
	if !lok || !rok {
		return nil, fmt.Errorf("exprvm: string predicate requires strings")
	}
	return value.Bool(pred(string(ls), string(rs))), nil
}

func memberOf(needle, haystack value.Value) bool {
	arr, ok := haystack.(value.Array)
	if !ok {
		return false
	}
	for _, v := range arr {
		if value.Equal(needle, v) {
			return true
		}
	}
	return false
}
