package engine

import (
	"fmt"

	"github.com/corintai/corint/internal/analyzer"
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/compiler"
	"github.com/corintai/corint/internal/parser"
	"github.com/corintai/corint/internal/repository"
	"github.com/corintai/corint/internal/resolver"
	"github.com/corintai/corint/pkg/corinterr"
)

// Build is a fully compiled, ready-to-swap-in snapshot of one repository
// reload: every rule and ruleset program a pipeline's import closure
// reaches (keyed by id, sharing one namespace since CallRuleset dispatches
// rule ids and ruleset ids through the same table), every top-level
// pipeline program, and the parsed registry that dispatches events to
// pipelines.
type Build struct {
	Programs  map[string]*bytecode.Program // rule id or ruleset id -> program
	Pipelines map[string]*bytecode.Program
	Registry  ast.Registry
}

// BuildFromRepository loads every pipeline and the registry out of repo,
// resolves each pipeline's import closure (rules/rulesets it references,
// with `extends` inheritance applied), analyzes every artifact, and
// compiles the whole set. It mirrors the teacher's plugin-discovery pass
// (internal/plugin's registry bootstrap, all-at-once and fail-fast) rather
// than a lazy per-id compile, since §5 requires a Reload to be an
// atomic whole-table swap.
func BuildFromRepository(repo repository.Repository) (*Build, error) {
	b := &Build{
		Programs:  make(map[string]*bytecode.Program),
		Pipelines: make(map[string]*bytecode.Program),
	}

	res := resolver.New(repo)

	pipelineIDs, err := repo.ListPipelines()
	if err != nil {
		return nil, fmt.Errorf("engine: list pipelines: %w", err)
	}

	for _, id := range pipelineIDs {
		pipeline, raw, err := repo.LoadPipeline(id)
		if err != nil {
			return nil, fmt.Errorf("engine: load pipeline %q: %w", id, err)
		}

		if diag := analyzer.AnalyzePipeline(pipeline); diag.HasErrors() {
			return nil, fmt.Errorf("engine: analyze pipeline %q: %w", id, diag.FirstError())
		}

		docs, err := parser.ParseBytes([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("engine: reparse pipeline %q for imports: %w", id, err)
		}
		resolved, err := res.ResolveDocuments(docs)
		if err != nil {
			return nil, fmt.Errorf("engine: resolve imports for pipeline %q: %w", id, err)
		}

		for _, rule := range resolved.Rules {
			if diag := analyzer.AnalyzeRule(rule); diag.HasErrors() {
				return nil, fmt.Errorf("engine: analyze rule %q: %w", rule.ID, diag.FirstError())
			}
			prog, err := compiler.CompileRule(rule)
			if err != nil {
				return nil, fmt.Errorf("engine: compile rule %q: %w", rule.ID, err)
			}
			b.Programs[rule.ID] = prog
		}
		for _, rs := range resolved.Rulesets {
			if diag := analyzer.AnalyzeRuleset(rs); diag.HasErrors() {
				return nil, fmt.Errorf("engine: analyze ruleset %q: %w", rs.ID, diag.FirstError())
			}
			prog, err := compiler.CompileRuleset(rs)
			if err != nil {
				return nil, fmt.Errorf("engine: compile ruleset %q: %w", rs.ID, err)
			}
			b.Programs[rs.ID] = prog
		}

		prog, err := compiler.CompilePipeline(pipeline)
		if err != nil {
			return nil, fmt.Errorf("engine: compile pipeline %q: %w", id, err)
		}
		b.Pipelines[id] = prog
	}

	registryRaw, err := repo.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("engine: load registry: %w", err)
	}
	reg, err := parseRegistry(registryRaw)
	if err != nil {
		return nil, err
	}
	b.Registry = reg

	return b, nil
}

func parseRegistry(raw string) (ast.Registry, error) {
	docs, err := parser.ParseBytes([]byte(raw))
	if err != nil {
		return ast.Registry{}, fmt.Errorf("engine: parse registry: %w", err)
	}
	for _, d := range docs {
		if d.Registry != nil {
			return *d.Registry, nil
		}
	}
	return ast.Registry{}, corinterr.NewInvalidValue("registry document contains no registry block", nil)
}
