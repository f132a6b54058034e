package engine

import (
	"fmt"

	"github.com/corintai/corint/internal/ast"
)

// fakeRepository is an in-memory repository.Repository used only by this
// package's tests, avoiding a filesystem fixture for every Build test the
// way the teacher's own in-memory plugin registry fakes avoid disk I/O in
// unit tests.
type fakeRepository struct {
	rules     map[string]ast.Rule
	rulesets  map[string]ast.Ruleset
	pipelines map[string]ast.Pipeline
	raw       map[string]string // id -> raw YAML, for pipelines/rulesets only
	registry  string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		rules:     make(map[string]ast.Rule),
		rulesets:  make(map[string]ast.Ruleset),
		pipelines: make(map[string]ast.Pipeline),
		raw:       make(map[string]string),
	}
}

func (f *fakeRepository) LoadRule(id string) (ast.Rule, string, error) {
	r, ok := f.rules[id]
	if !ok {
		return ast.Rule{}, "", fmt.Errorf("fakeRepository: no rule %q", id)
	}
	return r, f.raw[id], nil
}

func (f *fakeRepository) LoadRuleset(id string) (ast.Ruleset, string, error) {
	r, ok := f.rulesets[id]
	if !ok {
		return ast.Ruleset{}, "", fmt.Errorf("fakeRepository: no ruleset %q", id)
	}
	return r, f.raw[id], nil
}

func (f *fakeRepository) LoadTemplate(id string) (ast.DecisionTemplate, string, error) {
	return ast.DecisionTemplate{}, "", fmt.Errorf("fakeRepository: templates unsupported")
}

func (f *fakeRepository) LoadPipeline(id string) (ast.Pipeline, string, error) {
	p, ok := f.pipelines[id]
	if !ok {
		return ast.Pipeline{}, "", fmt.Errorf("fakeRepository: no pipeline %q", id)
	}
	return p, f.raw[id], nil
}

func (f *fakeRepository) LoadRegistry() (string, error) { return f.registry, nil }

func (f *fakeRepository) Exists(id string) bool {
	_, ok := f.pipelines[id]
	if ok {
		return true
	}
	_, ok = f.rulesets[id]
	if ok {
		return true
	}
	_, ok = f.rules[id]
	return ok
}

func (f *fakeRepository) ListRules() ([]string, error) {
	return keysOf(f.rules), nil
}

func (f *fakeRepository) ListRulesets() ([]string, error) {
	return keysOf(f.rulesets), nil
}

func (f *fakeRepository) ListPipelines() ([]string, error) {
	return keysOf(f.pipelines), nil
}

func (f *fakeRepository) ListTemplates() ([]string, error) { return nil, nil }

func keysOf[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
