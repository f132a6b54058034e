package compiler

import (
	"testing"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/value"
	"github.com/stretchr/testify/require"
)

func lit(n float64) ast.Expression { return ast.Literal{Value: value.Number(n)} }
func litBool(b bool) ast.Expression { return ast.Literal{Value: value.Bool(b)} }

// S2 — short-circuit Any: a(true), b, c each lowered; only two guarded
// (Dup/JumpIfTrue/Pop) sequences precede the final bare condition.
func TestLowerLogicalGroupAnyShortCircuit(t *testing.T) {
	t.Parallel()

	group := ast.LogicalGroup{
		Op: ast.LogicalAny,
		Conditions: []ast.Condition{
			{Expr: litBool(true)},
			{Expr: litBool(false)},
			{Expr: litBool(true)},
		},
	}
	em := newEmitter()
	require.NoError(t, lowerExpr(group, em))
	prog := em.program()

	// a; Dup; JumpIfTrue->end; Pop; b; Dup; JumpIfTrue->end; Pop; c
	require.Len(t, prog, 9)
	require.Equal(t, bytecode.OpLoadConst, prog[0].Op)
	require.Equal(t, bytecode.OpDup, prog[1].Op)
	require.Equal(t, bytecode.OpJumpIfTrue, prog[2].Op)
	require.Equal(t, bytecode.OpPop, prog[3].Op)
	require.Equal(t, bytecode.OpLoadConst, prog[4].Op)
	require.Equal(t, bytecode.OpDup, prog[5].Op)
	require.Equal(t, bytecode.OpJumpIfTrue, prog[6].Op)
	require.Equal(t, bytecode.OpPop, prog[7].Op)
	require.Equal(t, bytecode.OpLoadConst, prog[8].Op)

	// both JumpIfTrue instructions land one past the final instruction
	// (index 9, the end of the group), leaving a single value on the stack.
	require.Equal(t, 9, 2+prog[2].Offset)
	require.Equal(t, 9, 6+prog[6].Offset)
}

func TestLowerLogicalGroupEmptyAndSingle(t *testing.T) {
	t.Parallel()

	em := newEmitter()
	require.NoError(t, lowerLogicalConditions(nil, true, em))
	require.Equal(t, []bytecode.Instruction{{Op: bytecode.OpLoadConst, Const: value.Bool(true)}}, em.program())

	em2 := newEmitter()
	require.NoError(t, lowerLogicalConditions(nil, false, em2))
	require.Equal(t, value.Bool(false), em2.program()[0].Const)

	em3 := newEmitter()
	require.NoError(t, lowerLogicalConditions([]ast.Condition{{Expr: litBool(true)}}, true, em3))
	require.Len(t, em3.program(), 1)
}

// S5 — ruleset with terminate: the terminating branch ends in Return and
// the default tail is lowered as the unconditional final sequence.
func TestCompileRulesetTerminateShape(t *testing.T) {
	t.Parallel()

	rs := ast.Ruleset{
		ID:      "fraud_check",
		RuleIDs: []string{"r1", "r2"},
		Conclusion: []ast.ConclusionBranch{
			{
				Condition: ast.Condition{Expr: ast.Binary{
					Left:  ast.ResultAccess{Field: "total_score"},
					Op:    ast.OpGe,
					Right: lit(100),
				}},
				Action:    ast.Signal{Kind: ast.SignalDeny},
				Terminate: true,
			},
			{Default: true, Action: ast.Signal{Kind: ast.SignalApprove}},
		},
	}
	prog, err := CompileRuleset(rs)
	require.NoError(t, err)

	var sawTerminateReturn, sawFinalReturn bool
	for i, in := range prog.Instructions {
		if in.Op == bytecode.OpReturn && i < len(prog.Instructions)-1 {
			sawTerminateReturn = true
		}
		if in.Op == bytecode.OpReturn && i == len(prog.Instructions)-1 {
			sawFinalReturn = true
		}
	}
	require.True(t, sawTerminateReturn, "terminate branch must emit an early Return")
	require.True(t, sawFinalReturn, "program must end in a trailing Return")

	require.Equal(t, bytecode.OpCallRuleset, prog.Instructions[0].Op)
	require.Equal(t, "r1", prog.Instructions[0].RuleID)
	require.Equal(t, bytecode.OpCallRuleset, prog.Instructions[1].Op)
	require.Equal(t, "r2", prog.Instructions[1].RuleID)
}

// S6 — constant folding: (10 + 20) * 2 folds to a single literal 60.
func TestFoldExpressionConstantFolding(t *testing.T) {
	t.Parallel()

	expr := ast.Binary{
		Left:  ast.Binary{Left: lit(10), Op: ast.OpAdd, Right: lit(20)},
		Op:    ast.OpMul,
		Right: lit(2),
	}
	folded := FoldExpression(expr)
	literal, ok := folded.(ast.Literal)
	require.True(t, ok, "expected a folded literal, got %T", folded)
	require.Equal(t, value.Number(60), literal.Value)

	em := newEmitter()
	require.NoError(t, lowerExpr(folded, em))
	require.Len(t, em.program(), 1)
	require.Equal(t, bytecode.OpLoadConst, em.program()[0].Op)
}

func TestFoldExpressionSkipsDivisionByZero(t *testing.T) {
	t.Parallel()

	expr := ast.Binary{Left: lit(10), Op: ast.OpDiv, Right: lit(0)}
	folded := FoldExpression(expr)
	_, isLiteral := folded.(ast.Literal)
	require.False(t, isLiteral, "division by zero must not fold")
}

// S7 — DCE after Return: [SetScore{50}, Return, SetScore{100}, AddScore{25}]
// optimizes to [SetScore{50}, Return] (length 2).
func TestEliminateDeadCodeAfterReturn(t *testing.T) {
	t.Parallel()

	instrs := []bytecode.Instruction{
		{Op: bytecode.OpSetScore, Score: 50},
		{Op: bytecode.OpReturn},
		{Op: bytecode.OpSetScore, Score: 100},
		{Op: bytecode.OpAddScore, Score: 25},
	}
	out := EliminateDeadCode(instrs)
	require.Len(t, out, 2)
	require.Equal(t, bytecode.OpSetScore, out[0].Op)
	require.Equal(t, float64(50), out[0].Score)
	require.Equal(t, bytecode.OpReturn, out[1].Op)
}

func TestEliminateDeadCodeKeepsLabeledTarget(t *testing.T) {
	t.Parallel()

	instrs := []bytecode.Instruction{
		{Op: bytecode.OpJump, Offset: 2}, // -> index 2
		{Op: bytecode.OpSetScore, Score: 1},
		{Op: bytecode.OpSetScore, Score: 2}, // jump target, must survive
		{Op: bytecode.OpReturn},
	}
	out := EliminateDeadCode(instrs)
	require.Len(t, out, 3) // dead SetScore{1} dropped, label and Return kept
	require.Equal(t, bytecode.OpJump, out[0].Op)
	require.Equal(t, bytecode.OpSetScore, out[1].Op)
	require.Equal(t, float64(2), out[1].Score)
	require.Equal(t, 1, out[0].Offset) // 0 + 1 == 1, the new position of the target
}

func TestEliminateDeadCodeRemovesNoOps(t *testing.T) {
	t.Parallel()

	instrs := []bytecode.Instruction{
		{Op: bytecode.OpAddScore, Score: 0},
		{Op: bytecode.OpJump, Offset: 1},
		{Op: bytecode.OpReturn},
	}
	out := EliminateDeadCode(instrs)
	require.Len(t, out, 1)
	require.Equal(t, bytecode.OpReturn, out[0].Op)
}

func TestCompileRuleSimpleShape(t *testing.T) {
	t.Parallel()

	r := ast.Rule{
		ID:    "age_check",
		Name:  "Age check",
		When:  ast.WhenBlock{EventType: "login", Conditions: []ast.Condition{{Expr: ast.Binary{Left: ast.FieldAccess{Path: []string{"user", "age"}}, Op: ast.OpGt, Right: lit(18)}}}},
		Score: 50,
	}
	prog, err := CompileRule(r)
	require.NoError(t, err)
	require.Equal(t, bytecode.OpCheckEventType, prog.Instructions[0].Op)
	require.Equal(t, "login", prog.Instructions[0].Expected)

	last := prog.Instructions[len(prog.Instructions)-1]
	require.Equal(t, bytecode.OpReturn, last.Op)

	var sawMark, sawAdd bool
	for _, in := range prog.Instructions {
		if in.Op == bytecode.OpMarkRuleTriggered && in.RuleID == "age_check" {
			sawMark = true
		}
		if in.Op == bytecode.OpAddScore && in.Score == 50 {
			sawAdd = true
		}
	}
	require.True(t, sawMark)
	require.True(t, sawAdd)
}

func TestCompilePipelineRouterShape(t *testing.T) {
	t.Parallel()

	p := ast.Pipeline{
		ID:    "txn_pipeline",
		Entry: "router",
		Steps: []ast.Step{
			{
				ID:   "router",
				Type: ast.StepRouter,
				Routes: []ast.Route{
					{When: ast.WhenBlock{Conditions: []ast.Condition{{Expr: ast.Binary{Left: ast.FieldAccess{Path: []string{"amount"}}, Op: ast.OpGt, Right: lit(1000)}}}}, Next: "high"},
					{When: ast.WhenBlock{Conditions: []ast.Condition{{Expr: ast.Binary{Left: ast.FieldAccess{Path: []string{"amount"}}, Op: ast.OpGt, Right: lit(100)}}}}, Next: "medium"},
				},
				Default: "low",
			},
			{ID: "high", Type: ast.StepRuleset, RulesetID: "high_rs"},
			{ID: "medium", Type: ast.StepRuleset, RulesetID: "medium_rs"},
			{ID: "low", Type: ast.StepRuleset, RulesetID: "low_rs"},
		},
	}
	prog, err := CompilePipeline(p)
	require.NoError(t, err)

	var sawDefault bool
	for _, in := range prog.Instructions {
		if in.Op == bytecode.OpMarkStepExecuted && in.IsDefaultRoute {
			sawDefault = true
			require.Equal(t, "low", in.NextStepID)
		}
	}
	require.True(t, sawDefault)
	require.Equal(t, bytecode.OpReturn, prog.Instructions[len(prog.Instructions)-1].Op)
}
