package vm

import (
	"context"
	"testing"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/compiler"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/pkg/corinterr"
	"github.com/stretchr/testify/require"
)

func eventContext(t *testing.T, native map[string]interface{}) *value.Context {
	t.Helper()
	ev := value.FromNative(native)
	return value.NewContext(ev)
}

// S1 — simple rule triggers: age_check with event.type=login, user.age>18,
// score 50, against {type: login, user: {age: 25}} -> score 50, triggered.
func TestMachineExecuteRuleS1(t *testing.T) {
	t.Parallel()

	r := ast.Rule{
		ID:    "age_check",
		Name:  "Age check",
		Score: 50,
		When: ast.WhenBlock{
			EventType: "login",
			Conditions: []ast.Condition{{Expr: ast.Binary{
				Left:  ast.FieldAccess{Path: []string{"user", "age"}},
				Op:    ast.OpGt,
				Right: ast.Literal{Value: value.Number(18)},
			}}},
		},
	}
	prog, err := compiler.CompileRule(r)
	require.NoError(t, err)

	ectx := eventContext(t, map[string]interface{}{
		"type": "login",
		"user": map[string]interface{}{"age": 25},
	})

	m := &Machine{}
	require.NoError(t, m.Execute(context.Background(), prog, ectx))

	require.Equal(t, float64(50), ectx.Result.TotalScore)
	require.Equal(t, []string{"age_check"}, ectx.Result.TriggeredRules)
}

func TestMachineExecuteRuleEventTypeMismatchSkips(t *testing.T) {
	t.Parallel()

	r := ast.Rule{ID: "age_check", Score: 50, When: ast.WhenBlock{EventType: "login"}}
	prog, err := compiler.CompileRule(r)
	require.NoError(t, err)

	ectx := eventContext(t, map[string]interface{}{"type": "payment"})
	m := &Machine{}
	require.NoError(t, m.Execute(context.Background(), prog, ectx))

	require.Equal(t, float64(0), ectx.Result.TotalScore)
	require.Empty(t, ectx.Result.TriggeredRules)
}

// S3 — router picks first match: amount=500 takes the medium route;
// amount=50 falls through to the default (low) route.
func TestMachineExecutePipelineRouterS3(t *testing.T) {
	t.Parallel()

	p := ast.Pipeline{
		ID:    "txn",
		Entry: "router",
		Steps: []ast.Step{
			{
				ID:   "router",
				Type: ast.StepRouter,
				Routes: []ast.Route{
					{When: ast.WhenBlock{Conditions: []ast.Condition{{Expr: ast.Binary{Left: ast.FieldAccess{Path: []string{"amount"}}, Op: ast.OpGt, Right: ast.Literal{Value: value.Number(1000)}}}}}, Next: "high"},
					{When: ast.WhenBlock{Conditions: []ast.Condition{{Expr: ast.Binary{Left: ast.FieldAccess{Path: []string{"amount"}}, Op: ast.OpGt, Right: ast.Literal{Value: value.Number(100)}}}}}, Next: "medium"},
				},
				Default: "low",
			},
			{ID: "high", Type: ast.StepFunction, Next: "end"},
			{ID: "medium", Type: ast.StepFunction, Next: "end"},
			{ID: "low", Type: ast.StepFunction, Next: "end"},
		},
	}
	prog, err := compiler.CompilePipeline(p)
	require.NoError(t, err)

	m := &Machine{}

	ectx := eventContext(t, map[string]interface{}{"amount": 500})
	require.NoError(t, m.Execute(context.Background(), prog, ectx))
	require.Equal(t, []string{"router", "medium"}, ectx.Result.ExecutedSteps)

	ectx2 := eventContext(t, map[string]interface{}{"amount": 50})
	require.NoError(t, m.Execute(context.Background(), prog, ectx2))
	require.Equal(t, []string{"router", "low"}, ectx2.Result.ExecutedSteps)
}

// S4 — pipeline-level when guard skips everything: when event.type ==
// payment fails for a login event, Return is reached with no steps
// executed and a zero score.
func TestMachineExecutePipelineGuardSkipsS4(t *testing.T) {
	t.Parallel()

	guard := ast.WhenBlock{Conditions: []ast.Condition{{Expr: ast.Binary{
		Left: ast.FieldAccess{Path: []string{"type"}}, Op: ast.OpEq, Right: ast.Literal{Value: value.String("payment")},
	}}}}
	p := ast.Pipeline{
		ID:    "payment_only",
		Entry: "step1",
		When:  &guard,
		Steps: []ast.Step{{ID: "step1", Type: ast.StepFunction, Next: "end"}},
	}
	prog, err := compiler.CompilePipeline(p)
	require.NoError(t, err)

	ectx := eventContext(t, map[string]interface{}{"type": "login"})
	m := &Machine{}
	require.NoError(t, m.Execute(context.Background(), prog, ectx))

	require.Empty(t, ectx.Result.ExecutedSteps)
	require.Equal(t, float64(0), ectx.Result.TotalScore)
}

// S8 is enforced at the request-entry boundary (see internal/value's
// ValidateReservedNames, invoked before a Context is ever constructed), so
// the VM has no reserved-key handling of its own; this test checks that
// validation flags a reserved top-level key.
func TestMachineReservedKeyFlaggedByValidation(t *testing.T) {
	t.Parallel()
	require.NotEmpty(t, value.ValidateReservedNames(value.FromNative(map[string]interface{}{"total_score": 0})))
}

func TestMachineSignalPrecedenceMostRecentWins(t *testing.T) {
	t.Parallel()

	prog := &bytecode.Program{Instructions: []bytecode.Instruction{
		{Op: bytecode.OpSetSignal, Signal: "review"},
		{Op: bytecode.OpSetSignal, Signal: "deny"},
		{Op: bytecode.OpReturn},
	}}
	ectx := eventContext(t, map[string]interface{}{})
	m := &Machine{}
	require.NoError(t, m.Execute(context.Background(), prog, ectx))
	require.Equal(t, "deny", ectx.Result.Signal)
}

func TestMachineCallFeatureWithoutStoreReturnsZero(t *testing.T) {
	t.Parallel()

	prog := &bytecode.Program{Instructions: []bytecode.Instruction{
		{Op: bytecode.OpCallFeature, FeatureType: bytecode.FeatureCount},
		{Op: bytecode.OpStore, Name: "count"},
		{Op: bytecode.OpReturn},
	}}
	ectx := eventContext(t, map[string]interface{}{})
	m := &Machine{}
	require.NoError(t, m.Execute(context.Background(), prog, ectx))
	require.Equal(t, value.Number(0), ectx.Variables["count"])
}

func TestMachineCallExternalFallback(t *testing.T) {
	t.Parallel()

	prog := &bytecode.Program{Instructions: []bytecode.Instruction{
		{Op: bytecode.OpCallExternal, API: "risk", Endpoint: "score", HasFallback: true, Fallback: value.Number(-1)},
		{Op: bytecode.OpStore, Name: "score"},
		{Op: bytecode.OpReturn},
	}}
	ectx := eventContext(t, map[string]interface{}{})
	m := &Machine{} // no External configured
	require.NoError(t, m.Execute(context.Background(), prog, ectx))
	require.Equal(t, value.Number(-1), ectx.Variables["score"])
}

func TestMachineStackUnderflowIsStackError(t *testing.T) {
	t.Parallel()

	prog := &bytecode.Program{Instructions: []bytecode.Instruction{{Op: bytecode.OpPop}}}
	ectx := eventContext(t, map[string]interface{}{})
	m := &Machine{}
	err := m.Execute(context.Background(), prog, ectx)
	require.Error(t, err)
	var ce *corinterr.CorintError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, corinterr.CodeStackError, ce.Code)
}

func TestMachineCallBuiltinAbs(t *testing.T) {
	t.Parallel()

	prog := &bytecode.Program{Instructions: []bytecode.Instruction{
		{Op: bytecode.OpLoadConst, Const: value.Number(-7)},
		{Op: bytecode.OpCallBuiltin, FuncName: "abs", ArgCount: 1},
		{Op: bytecode.OpStore, Name: "out"},
		{Op: bytecode.OpReturn},
	}}
	ectx := eventContext(t, map[string]interface{}{})
	m := &Machine{}
	require.NoError(t, m.Execute(context.Background(), prog, ectx))
	require.Equal(t, value.Number(7), ectx.Variables["out"])
}
