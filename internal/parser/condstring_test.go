package parser

import (
	"testing"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/value"
	"github.com/stretchr/testify/require"
)

func TestParseConditionStringComparison(t *testing.T) {
	t.Parallel()

	expr, err := ParseConditionString("payment_amount > 1000")
	require.NoError(t, err)
	bin, ok := expr.(ast.Binary)
	require.True(t, ok)
	require.Equal(t, ast.OpGt, bin.Op)
	require.Equal(t, ast.FieldAccess{Path: []string{"payment_amount"}}, bin.Left)
	require.Equal(t, ast.Literal{Value: value.Number(1000)}, bin.Right)
}

func TestParseConditionStringNegativeNumber(t *testing.T) {
	t.Parallel()

	expr, err := ParseConditionString("balance >= -50.5")
	require.NoError(t, err)
	bin := expr.(ast.Binary)
	require.Equal(t, ast.OpGe, bin.Op)
	require.Equal(t, ast.Literal{Value: value.Number(-50.5)}, bin.Right)
}

func TestParseConditionStringPrefersLongerOperator(t *testing.T) {
	t.Parallel()

	expr, err := ParseConditionString("status != \"blocked\"")
	require.NoError(t, err)
	bin := expr.(ast.Binary)
	require.Equal(t, ast.OpNe, bin.Op)
	require.Equal(t, ast.Literal{Value: value.String("blocked")}, bin.Right)
}

func TestParseConditionStringWordOperators(t *testing.T) {
	t.Parallel()

	expr, err := ParseConditionString("country not in [\"US\", \"CA\"]")
	require.NoError(t, err)
	bin := expr.(ast.Binary)
	require.Equal(t, ast.OpNotIn, bin.Op)
	arr := bin.Right.(ast.Literal).Value.(value.Array)
	require.Equal(t, value.Array{value.String("US"), value.String("CA")}, arr)
}

func TestParseConditionStringBraceTemplate(t *testing.T) {
	t.Parallel()

	expr, err := ParseConditionString("amount > {threshold.default}")
	require.NoError(t, err)
	bin := expr.(ast.Binary)
	require.Equal(t, ast.FieldAccess{Path: []string{"threshold", "default"}}, bin.Right)
}

func TestParseConditionStringBareFieldPath(t *testing.T) {
	t.Parallel()

	expr, err := ParseConditionString("user.verified")
	require.NoError(t, err)
	require.Equal(t, ast.FieldAccess{Path: []string{"user", "verified"}}, expr)
}
