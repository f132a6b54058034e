package engine

import (
	"testing"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/parser"
	"github.com/corintai/corint/internal/value"
	"github.com/stretchr/testify/require"
)

func exprCondition(s string) (ast.Condition, error) {
	expr, err := parser.ParseConditionString(s)
	if err != nil {
		return ast.Condition{}, err
	}
	return ast.Condition{Expr: expr}, nil
}

func TestSelectPipelineFirstMatchWins(t *testing.T) {
	t.Parallel()

	reg := ast.Registry{
		Entries: []ast.RegistryEntry{
			{When: ast.WhenBlock{EventType: "login"}, PipelineID: "login_pipeline"},
			{When: ast.WhenBlock{EventType: "payment"}, PipelineID: "payment_pipeline"},
		},
	}

	id, err := SelectPipeline(reg, value.Object{"type": value.String("payment")})
	require.NoError(t, err)
	require.Equal(t, "payment_pipeline", id)
}

func TestSelectPipelineFallsBackToDefaultPipeline(t *testing.T) {
	t.Parallel()

	reg := ast.Registry{
		Entries:           []ast.RegistryEntry{{When: ast.WhenBlock{EventType: "login"}, PipelineID: "login_pipeline"}},
		DefaultPipelineID: "catch_all",
	}

	id, err := SelectPipeline(reg, value.Object{"type": value.String("payment")})
	require.NoError(t, err)
	require.Equal(t, "catch_all", id)
}

func TestSelectPipelineRejectsWhenDefaultRejectSet(t *testing.T) {
	t.Parallel()

	reg := ast.Registry{DefaultReject: true}

	_, err := SelectPipeline(reg, value.Object{"type": value.String("payment")})
	require.ErrorAs(t, err, &ErrNoMatchingPipeline{})
}

func TestSelectPipelineApprovesWithoutPipelineByDefault(t *testing.T) {
	t.Parallel()

	reg := ast.Registry{}

	_, err := SelectPipeline(reg, value.Object{"type": value.String("payment")})
	require.ErrorAs(t, err, &ApprovedWithoutPipeline{})
}

func TestSelectPipelineEvaluatesConditions(t *testing.T) {
	t.Parallel()

	cond, err := exprCondition("amount > 100")
	require.NoError(t, err)

	reg := ast.Registry{
		Entries: []ast.RegistryEntry{
			{When: ast.WhenBlock{Conditions: []ast.Condition{cond}}, PipelineID: "review_pipeline"},
		},
		DefaultPipelineID: "standard_pipeline",
	}

	id, err := SelectPipeline(reg, value.Object{"amount": value.Number(250)})
	require.NoError(t, err)
	require.Equal(t, "review_pipeline", id)

	id, err = SelectPipeline(reg, value.Object{"amount": value.Number(10)})
	require.NoError(t, err)
	require.Equal(t, "standard_pipeline", id)
}
