package engine

import (
	"context"
	"testing"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/parser"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/internal/vm"
	"github.com/stretchr/testify/require"
)

func mustParsePipeline(t testing.TB, yamlSrc string) ast.Pipeline {
	t.Helper()
	docs, err := parser.ParseBytes([]byte(yamlSrc))
	require.NoError(t, err)
	for _, d := range docs {
		if d.Pipeline != nil {
			return *d.Pipeline
		}
	}
	t.Fatalf("fixture contains no pipeline document")
	return ast.Pipeline{}
}

const buildFixtureYAML = `
rule:
  id: high_amount
  when:
    conditions:
      - "event.amount > 100"
  score: 40
---
ruleset:
  id: payment_rules
  rules: [high_amount]
  conclusion:
    - when:
        conditions: ["result.score >= 40"]
      signal: review
      reason: "amount above threshold"
      terminate: true
    - default: true
      signal: approve
      reason: "no rule triggered"
`

const buildFixturePipelineYAML = `
pipeline:
  id: payment_pipeline
  entry: evaluate
  steps:
    - id: evaluate
      type: ruleset
      ruleset: payment_rules
      next: end
`

const buildFixtureRegistryYAML = `
registry:
  entries:
    - when:
        event.type: "payment"
      pipeline: payment_pipeline
  default_reject: true
`

func newBuildFixtureRepository(t testing.TB) *fakeRepository {
	repo := newFakeRepository()
	repo.pipelines["payment_pipeline"] = mustParsePipeline(t, buildFixturePipelineYAML)
	repo.raw["payment_pipeline"] = buildFixtureYAML + "---\n" + buildFixturePipelineYAML
	repo.registry = buildFixtureRegistryYAML
	return repo
}

func TestBuildFromRepositoryCompilesClosure(t *testing.T) {
	t.Parallel()

	repo := newBuildFixtureRepository(t)
	build, err := BuildFromRepository(repo)
	require.NoError(t, err)

	require.Contains(t, build.Programs, "high_amount")
	require.Contains(t, build.Programs, "payment_rules")
	require.Contains(t, build.Pipelines, "payment_pipeline")
	require.Len(t, build.Registry.Entries, 1)
	require.Equal(t, "payment_pipeline", build.Registry.Entries[0].PipelineID)
	require.True(t, build.Registry.DefaultReject)
}

// TestBuildFromRepositoryExecutesConclusionGuard runs the compiled
// ruleset program end to end, so the "result.score >= 40" conclusion
// guard authored in buildFixtureYAML is exercised by the VM, not just
// compiled.
func TestBuildFromRepositoryExecutesConclusionGuard(t *testing.T) {
	t.Parallel()

	repo := newBuildFixtureRepository(t)
	build, err := BuildFromRepository(repo)
	require.NoError(t, err)

	table := NewProgramTable()
	table.Reload(build.Programs, build.Pipelines)
	machine := &vm.Machine{Rulesets: table}

	prog, ok := table.Pipeline("payment_pipeline")
	require.True(t, ok)

	ectx := value.NewContext(value.Object{"amount": value.Number(250)})
	require.NoError(t, machine.Execute(context.Background(), prog, ectx))
	require.Equal(t, "review", ectx.Result.Signal)
	require.Equal(t, float64(40), ectx.Result.TotalScore)
}
