package analyzer

import (
	"testing"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/pkg/corinterr"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePipelineMissingEntryIsFatal(t *testing.T) {
	t.Parallel()

	res := AnalyzePipeline(ast.Pipeline{ID: "p"})
	require.True(t, res.HasErrors())
	require.Equal(t, corinterr.CodeE001MissingEntry, res.Errors[0].Code)
}

func TestAnalyzePipelineEntryNotFound(t *testing.T) {
	t.Parallel()

	res := AnalyzePipeline(ast.Pipeline{ID: "p", Entry: "missing"})
	require.True(t, res.HasErrors())
	require.Equal(t, corinterr.CodeE002EntryNotFound, res.Errors[0].Code)
}

func TestAnalyzePipelineDuplicateStepID(t *testing.T) {
	t.Parallel()

	p := ast.Pipeline{
		ID:    "p",
		Entry: "a",
		Steps: []ast.Step{
			{ID: "a", Type: ast.StepRuleset, Next: "end"},
			{ID: "a", Type: ast.StepRuleset, Next: "end"},
		},
	}
	res := AnalyzePipeline(p)
	require.True(t, res.HasErrors())
	codes := errorCodes(res)
	require.Contains(t, codes, corinterr.CodeE003DuplicateStepID)
}

func TestAnalyzePipelineRouterShape(t *testing.T) {
	t.Parallel()

	p := ast.Pipeline{
		ID:    "p",
		Entry: "r",
		Steps: []ast.Step{
			{ID: "r", Type: ast.StepRouter, Next: "end"}, // E004: router with next
		},
	}
	res := AnalyzePipeline(p)
	codes := errorCodes(res)
	require.Contains(t, codes, corinterr.CodeE004RouterHasNext)
	require.Contains(t, codes, corinterr.CodeE005RouterNoRoutes)
}

func TestAnalyzePipelineUnknownStepRef(t *testing.T) {
	t.Parallel()

	p := ast.Pipeline{
		ID:    "p",
		Entry: "a",
		Steps: []ast.Step{
			{ID: "a", Type: ast.StepRuleset, Next: "ghost"},
		},
	}
	res := AnalyzePipeline(p)
	require.Contains(t, errorCodes(res), corinterr.CodeE006UnknownStepRef)
}

// S9 — cycle detection: pipeline A -> B -> C -> A from entry A must
// report E007 with the full path.
func TestAnalyzePipelineCycleS9(t *testing.T) {
	t.Parallel()

	p := ast.Pipeline{
		ID:    "p",
		Entry: "a",
		Steps: []ast.Step{
			{ID: "a", Type: ast.StepRuleset, Next: "b"},
			{ID: "b", Type: ast.StepRuleset, Next: "c"},
			{ID: "c", Type: ast.StepRuleset, Next: "a"},
		},
	}
	res := AnalyzePipeline(p)
	require.True(t, res.HasErrors())
	var cycleErr *corinterr.CorintError
	for _, e := range res.Errors {
		if e.Code == corinterr.CodeE007PipelineCycle {
			cycleErr = e
		}
	}
	require.NotNil(t, cycleErr)
	require.Equal(t, "a -> b -> c -> a", cycleErr.Context["path"])
}

func TestAnalyzePipelineUnreachableWarning(t *testing.T) {
	t.Parallel()

	p := ast.Pipeline{
		ID:    "p",
		Entry: "a",
		Steps: []ast.Step{
			{ID: "a", Type: ast.StepRuleset, Next: "end"},
			{ID: "orphan", Type: ast.StepRuleset, Next: "end"},
		},
	}
	res := AnalyzePipeline(p)
	require.False(t, res.HasErrors())
	require.Len(t, res.Warnings, 1)
	require.Equal(t, corinterr.CodeW001Unreachable, res.Warnings[0].Code)
}

func errorCodes(r Result) []corinterr.Code {
	codes := make([]corinterr.Code, 0, len(r.Errors))
	for _, e := range r.Errors {
		codes = append(codes, e.Code)
	}
	return codes
}
