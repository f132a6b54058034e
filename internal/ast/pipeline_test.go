package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectCycleFindsCycle(t *testing.T) {
	t.Parallel()

	p := Pipeline{
		Entry: "a",
		Steps: []Step{
			{ID: "a", Type: StepRuleset, Next: "b"},
			{ID: "b", Type: StepRuleset, Next: "c"},
			{ID: "c", Type: StepRuleset, Next: "a"},
		},
	}

	cycle := p.DetectCycle()
	require.Equal(t, []string{"a", "b", "c", "a"}, cycle)
}

func TestDetectCycleAcyclic(t *testing.T) {
	t.Parallel()

	p := Pipeline{
		Entry: "a",
		Steps: []Step{
			{ID: "a", Type: StepRouter, Routes: []Route{{Next: "b"}}, Default: "c"},
			{ID: "b", Type: StepRuleset, Next: "end"},
			{ID: "c", Type: StepRuleset, Next: "end"},
		},
	}

	require.Nil(t, p.DetectCycle())
}

func TestReachableFromEntrySkipsOrphans(t *testing.T) {
	t.Parallel()

	p := Pipeline{
		Entry: "a",
		Steps: []Step{
			{ID: "a", Type: StepRuleset, Next: "end"},
			{ID: "orphan", Type: StepRuleset, Next: "end"},
		},
	}

	reachable := p.ReachableFromEntry()
	require.True(t, reachable["a"])
	require.False(t, reachable["orphan"])
}

func TestStepTargetsExcludesEnd(t *testing.T) {
	t.Parallel()

	s := Step{
		ID:      "router",
		Type:    StepRouter,
		Routes:  []Route{{Next: "x"}, {Next: "end"}},
		Default: "end",
	}
	require.Equal(t, []string{"x"}, s.Targets())
}

func TestParseStepTypeUnknownFallsBack(t *testing.T) {
	t.Parallel()

	require.Equal(t, StepRouter, ParseStepType("router"))
	require.Equal(t, StepUnknown, ParseStepType("bogus"))
}

func TestValidID(t *testing.T) {
	t.Parallel()

	require.True(t, ValidID("high_value-1"))
	require.False(t, ValidID(""))
	require.False(t, ValidID("has space"))
}
