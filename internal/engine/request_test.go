package engine

import (
	"context"
	"testing"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/compiler"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/internal/vm"
	"github.com/stretchr/testify/require"
)

func newDecisionFixtureTable(t *testing.T) *ProgramTable {
	t.Helper()

	rule := ast.Rule{
		ID:    "high_amount",
		Score: 60,
		When: ast.WhenBlock{Conditions: []ast.Condition{{Expr: ast.Binary{
			Left:  ast.FieldAccess{Path: []string{"amount"}},
			Op:    ast.OpGt,
			Right: ast.Literal{Value: value.Number(100)},
		}}}},
	}
	ruleset := ast.Ruleset{
		ID:      "payment_rules",
		RuleIDs: []string{"high_amount"},
		Conclusion: []ast.ConclusionBranch{
			{
				Condition: ast.Condition{Expr: ast.Binary{
					Left:  ast.FieldAccess{Path: []string{"result", "score"}},
					Op:    ast.OpGe,
					Right: ast.Literal{Value: value.Number(60)},
				}},
				Action:    ast.Signal{Kind: ast.SignalReview},
				Reason:    "amount above threshold",
				Terminate: true,
			},
			{Default: true, Action: ast.Signal{Kind: ast.SignalApprove}, Reason: "clean"},
		},
	}
	pipeline := ast.Pipeline{
		ID:    "payment_pipeline",
		Entry: "evaluate",
		Steps: []ast.Step{
			{ID: "evaluate", Type: ast.StepRuleset, RulesetID: "payment_rules", Next: ast.EndStep},
		},
	}

	ruleProg, err := compiler.CompileRule(rule)
	require.NoError(t, err)
	rulesetProg, err := compiler.CompileRuleset(ruleset)
	require.NoError(t, err)
	pipelineProg, err := compiler.CompilePipeline(pipeline)
	require.NoError(t, err)

	table := NewProgramTable()
	table.Reload(
		map[string]*bytecode.Program{"high_amount": ruleProg, "payment_rules": rulesetProg},
		map[string]*bytecode.Program{"payment_pipeline": pipelineProg},
	)
	return table
}

func TestDecideRunsSelectedPipelineToReview(t *testing.T) {
	t.Parallel()

	table := newDecisionFixtureTable(t)
	reg := ast.Registry{
		Entries: []ast.RegistryEntry{
			{When: ast.WhenBlock{EventType: "payment"}, PipelineID: "payment_pipeline"},
		},
		DefaultReject: true,
	}
	machine := &vm.Machine{Rulesets: table}

	event := value.Object{"type": value.String("payment"), "amount": value.Number(250)}
	dr, err := Decide(context.Background(), machine, table, reg, "req-1", event, nil)
	require.NoError(t, err)
	require.Equal(t, "review", dr.Signal)
	require.Equal(t, 60, dr.Score)
	require.Equal(t, []string{"high_amount"}, dr.TriggeredRules)
}

func TestDecideRunsSelectedPipelineToApprove(t *testing.T) {
	t.Parallel()

	table := newDecisionFixtureTable(t)
	reg := ast.Registry{
		Entries: []ast.RegistryEntry{
			{When: ast.WhenBlock{EventType: "payment"}, PipelineID: "payment_pipeline"},
		},
		DefaultReject: true,
	}
	machine := &vm.Machine{Rulesets: table}

	event := value.Object{"type": value.String("payment"), "amount": value.Number(10)}
	dr, err := Decide(context.Background(), machine, table, reg, "req-2", event, nil)
	require.NoError(t, err)
	require.Equal(t, "approve", dr.Signal)
	require.Empty(t, dr.TriggeredRules)
}

func TestDecideRejectsUnmatchedEventWithDefaultReject(t *testing.T) {
	t.Parallel()

	table := newDecisionFixtureTable(t)
	reg := ast.Registry{DefaultReject: true}
	machine := &vm.Machine{Rulesets: table}

	event := value.Object{"type": value.String("login")}
	dr, err := Decide(context.Background(), machine, table, reg, "req-3", event, nil)
	require.NoError(t, err)
	require.Equal(t, "deny", dr.Signal)
}

func TestDecideApprovesWithoutPipelineByDefault(t *testing.T) {
	t.Parallel()

	table := newDecisionFixtureTable(t)
	reg := ast.Registry{}
	machine := &vm.Machine{Rulesets: table}

	event := value.Object{"type": value.String("login")}
	dr, err := Decide(context.Background(), machine, table, reg, "req-4", event, nil)
	require.NoError(t, err)
	require.Equal(t, "approve", dr.Signal)
}

func TestDecideRejectsReservedFieldBeforeDispatch(t *testing.T) {
	t.Parallel()

	table := newDecisionFixtureTable(t)
	reg := ast.Registry{}
	machine := &vm.Machine{Rulesets: table}

	event := value.Object{"type": value.String("payment"), "total_score": value.Number(1)}
	_, err := Decide(context.Background(), machine, table, reg, "req-5", event, nil)
	require.Error(t, err)
}
