package exprvm

import (
	"testing"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/value"
	"github.com/stretchr/testify/require"
)

func TestEvalArithmetic(t *testing.T) {
	t.Parallel()

	expr := ast.Binary{
		Left:  ast.Literal{Value: value.Number(10)},
		Op:    ast.OpAdd,
		Right: ast.Literal{Value: value.Number(20)},
	}
	v, err := Eval(expr, MapResolver{})
	require.NoError(t, err)
	require.Equal(t, value.Number(30), v)
}

func TestEvalDivisionByZero(t *testing.T) {
	t.Parallel()

	expr := ast.Binary{
		Left:  ast.Literal{Value: value.Number(1)},
		Op:    ast.OpDiv,
		Right: ast.Literal{Value: value.Number(0)},
	}
	_, err := Eval(expr, MapResolver{})
	require.Error(t, err)
}

func TestEvalFieldAccess(t *testing.T) {
	t.Parallel()

	resolver := MapResolver{"amount": value.Number(500)}
	expr := ast.Binary{
		Left:  ast.FieldAccess{Path: []string{"amount"}},
		Op:    ast.OpGt,
		Right: ast.Literal{Value: value.Number(100)},
	}
	v, err := Eval(expr, resolver)
	require.NoError(t, err)
	require.Equal(t, value.Bool(true), v)
}

func TestEvalLogicalGroupShortCircuitsAny(t *testing.T) {
	t.Parallel()

	resolver := MapResolver{}
	group := ast.LogicalGroup{
		Op: ast.LogicalAny,
		Conditions: []ast.Condition{
			{Expr: ast.Literal{Value: value.Bool(true)}},
			{Expr: ast.FunctionCall{Name: "undefined_fn"}},
		},
	}
	v, err := evalLogicalGroup(group, resolver)
	require.NoError(t, err)
	require.Equal(t, value.Bool(true), v)
}

func TestEvalAndShortCircuits(t *testing.T) {
	t.Parallel()

	expr := ast.Binary{
		Left:  ast.Literal{Value: value.Bool(false)},
		Op:    ast.OpAnd,
		Right: ast.FunctionCall{Name: "undefined_fn"},
	}
	v, err := Eval(expr, MapResolver{})
	require.NoError(t, err)
	require.Equal(t, value.Bool(false), v)
}

func TestEvalCompareStrings(t *testing.T) {
	t.Parallel()

	expr := ast.Binary{
		Left:  ast.Literal{Value: value.String("abc")},
		Op:    ast.OpStartsWith,
		Right: ast.Literal{Value: value.String("ab")},
	}
	v, err := Eval(expr, MapResolver{})
	require.NoError(t, err)
	require.Equal(t, value.Bool(true), v)
}

func TestEvalInList(t *testing.T) {
	t.Parallel()

	expr := ast.Binary{
		Left:  ast.Literal{Value: value.String("x")},
		Op:    ast.OpIn,
		Right: ast.Literal{Value: value.Array{value.String("x"), value.String("y")}},
	}
	v, err := Eval(expr, MapResolver{})
	require.NoError(t, err)
	require.Equal(t, value.Bool(true), v)
}

func TestMapResolverNestedPath(t *testing.T) {
	t.Parallel()

	resolver := MapResolver{"user": value.Object{"age": value.Number(25)}}
	v := resolver.Resolve([]string{"user", "age"})
	require.Equal(t, value.Number(25), v)

	missing := resolver.Resolve([]string{"user", "missing"})
	require.Equal(t, value.Null{}, missing)
}
