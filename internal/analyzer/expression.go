package analyzer

import (
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/pkg/corinterr"
)

// knownFunctions is the closed set of builtin function names CORINT
// recognizes; the language has no user-defined functions (see spec
// Non-goals), so any other name is an analyzer error.
var knownFunctions = map[string]bool{
	"abs": true, "len": true, "lower": true, "upper": true, "round": true,
}

// ValidateExpression recursively validates an expression tree: non-empty
// field paths, known function names, well-formed logical groups.
func ValidateExpression(e ast.Expression) *corinterr.CorintError {
	switch v := e.(type) {
	case ast.Literal:
		return nil
	case ast.FieldAccess:
		if len(v.Path) == 0 || v.Path[0] == "" {
			return corinterr.NewInvalidExpression("field access with empty path", nil)
		}
		return nil
	case ast.Binary:
		if err := ValidateExpression(v.Left); err != nil {
			return err
		}
		return ValidateExpression(v.Right)
	case ast.Unary:
		return ValidateExpression(v.Operand)
	case ast.FunctionCall:
		if !knownFunctions[v.Name] {
			return corinterr.NewUnsupportedFeature("unknown function: " + v.Name)
		}
		for _, arg := range v.Args {
			if err := ValidateExpression(arg); err != nil {
				return err
			}
		}
		return nil
	case ast.Ternary:
		if err := ValidateExpression(v.Cond); err != nil {
			return err
		}
		if err := ValidateExpression(v.Then); err != nil {
			return err
		}
		return ValidateExpression(v.Else)
	case ast.LogicalGroup:
		for _, c := range v.Conditions {
			if err := ValidateCondition(c); err != nil {
				return err
			}
		}
		return nil
	case ast.ListReference:
		if v.ListID == "" {
			return corinterr.NewInvalidExpression("list reference with empty id", nil)
		}
		return nil
	case ast.ResultAccess:
		if v.Field == "" {
			return corinterr.NewInvalidExpression("result access with empty field", nil)
		}
		return nil
	default:
		return corinterr.NewInvalidExpression("unrecognized expression node", nil)
	}
}

// ValidateCondition recursively validates a Condition tree.
func ValidateCondition(c ast.Condition) *corinterr.CorintError {
	if c.IsExpr() {
		return ValidateExpression(c.Expr)
	}
	switch c.Group.Kind {
	case ast.GroupNot:
		if len(c.Group.Children) != 1 {
			return corinterr.NewInvalidExpression("not group must have exactly one child", nil)
		}
	}
	for _, child := range c.Group.Children {
		if err := ValidateCondition(child); err != nil {
			return err
		}
	}
	return nil
}

// ValidateWhen validates a WhenBlock's embedded conditions (I7 exclusivity
// is already enforced at parse time by convertWhen).
func ValidateWhen(w ast.WhenBlock) *corinterr.CorintError {
	for _, c := range w.Conditions {
		if err := ValidateCondition(c); err != nil {
			return err
		}
	}
	if w.ConditionGroup != nil {
		return ValidateCondition(ast.Condition{Group: w.ConditionGroup})
	}
	return nil
}
