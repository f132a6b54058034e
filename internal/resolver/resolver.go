// Package resolver implements the import resolver (C4): it walks the
// Imports declared by a document closure through a repository.Repository,
// detects import cycles with an explicit loading stack (mirroring the
// teacher's plugin dependency graph's visited/stack/path DFS), applies
// ruleset inheritance (`extends`), and deduplicates by id.
package resolver

import (
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/parser"
	"github.com/corintai/corint/internal/repository"
	"github.com/corintai/corint/pkg/corinterr"
)

// ResolvedDocument is the flattened, deduplicated, inheritance-applied
// closure the Resolver produces.
type ResolvedDocument struct {
	Rules    []ast.Rule
	Rulesets []ast.Ruleset
}

// Resolver loads and flattens an import closure. It caches every artifact
// it loads, keyed by repository path, so repeated requests for the same
// path return the cached copy rather than re-fetching.
type Resolver struct {
	repo repository.Repository

	ruleCache    map[string]ast.Rule
	rulesetCache map[string]ast.Ruleset

	loadStack []string
	onStack   map[string]bool
}

// New returns a Resolver backed by repo.
func New(repo repository.Repository) *Resolver {
	return &Resolver{
		repo:         repo,
		ruleCache:    make(map[string]ast.Rule),
		rulesetCache: make(map[string]ast.Ruleset),
		onStack:      make(map[string]bool),
	}
}

// accumulator collects rules/rulesets in first-occurrence-wins order
// while flagging genuine id collisions across distinct source paths.
type accumulator struct {
	rules        map[string]ast.Rule
	ruleOrder    []string
	rulesets     map[string]ast.Ruleset
	rulesetOrder []string
}

func newAccumulator() *accumulator {
	return &accumulator{rules: make(map[string]ast.Rule), rulesets: make(map[string]ast.Ruleset)}
}

func (a *accumulator) addRule(rule ast.Rule) error {
	if existing, ok := a.rules[rule.ID]; ok {
		// An inline definition (no SourcePath) takes precedence over an
		// imported one with the same id.
		if existing.SourcePath == rule.SourcePath || existing.SourcePath == "" {
			return nil
		}
		return corinterr.NewDuplicateRuleID(rule.ID, []string{existing.SourcePath, rule.SourcePath})
	}
	a.rules[rule.ID] = rule
	a.ruleOrder = append(a.ruleOrder, rule.ID)
	return nil
}

func (a *accumulator) addRuleset(rs ast.Ruleset) error {
	if existing, ok := a.rulesets[rs.ID]; ok {
		if existing.SourcePath == rs.SourcePath || existing.SourcePath == "" {
			return nil
		}
		return corinterr.NewDuplicateRulesetID(rs.ID, []string{existing.SourcePath, rs.SourcePath})
	}
	a.rulesets[rs.ID] = rs
	a.rulesetOrder = append(a.rulesetOrder, rs.ID)
	return nil
}

// ResolveDocuments flattens the closure of docs (the documents of one
// parsed file, the first of which may carry Imports) plus every
// transitively imported rule/ruleset.
func (r *Resolver) ResolveDocuments(docs []ast.Document) (*ResolvedDocument, error) {
	acc := newAccumulator()

	// Inline definitions are collected first so they win over imports that
	// declare the same id (§4.1: "Inline definitions take precedence").
	for _, d := range docs {
		if d.Rule != nil {
			if err := acc.addRule(*d.Rule); err != nil {
				return nil, err
			}
		}
		if d.Ruleset != nil {
			if err := acc.addRuleset(*d.Ruleset); err != nil {
				return nil, err
			}
		}
	}

	for _, d := range docs {
		if d.Imports == nil {
			continue
		}
		for _, path := range d.Imports.Rules {
			if err := r.loadRulePath(path, acc); err != nil {
				return nil, err
			}
		}
		for _, path := range d.Imports.Rulesets {
			if err := r.loadRulesetPath(path, acc); err != nil {
				return nil, err
			}
		}
	}

	resolvedRulesets, err := applyInheritance(acc.rulesets)
	if err != nil {
		return nil, err
	}

	if err := validateClosure(acc.rules, resolvedRulesets); err != nil {
		return nil, err
	}

	result := &ResolvedDocument{}
	for _, id := range acc.ruleOrder {
		result.Rules = append(result.Rules, acc.rules[id])
	}
	for _, id := range acc.rulesetOrder {
		result.Rulesets = append(result.Rulesets, resolvedRulesets[id])
	}
	return result, nil
}

func (r *Resolver) enter(path string) error {
	if r.onStack[path] {
		full := append(append([]string{}, r.loadStack...), path)
		return corinterr.NewCircularDependency(full)
	}
	r.onStack[path] = true
	r.loadStack = append(r.loadStack, path)
	return nil
}

func (r *Resolver) exit(path string) {
	r.onStack[path] = false
	r.loadStack = r.loadStack[:len(r.loadStack)-1]
}

func (r *Resolver) loadRulePath(path string, acc *accumulator) error {
	if cached, ok := r.ruleCache[path]; ok {
		return acc.addRule(cached)
	}
	if err := r.enter(path); err != nil {
		return err
	}
	defer r.exit(path)

	rule, _, err := r.repo.LoadRule(path)
	if err != nil {
		return err
	}
	rule.SourcePath = path
	r.ruleCache[path] = rule
	return acc.addRule(rule)
}

func (r *Resolver) loadRulesetPath(path string, acc *accumulator) error {
	if cached, ok := r.rulesetCache[path]; ok && !r.onStack[path] {
		return acc.addRuleset(cached)
	}
	if err := r.enter(path); err != nil {
		return err
	}
	defer r.exit(path)

	ruleset, raw, err := r.repo.LoadRuleset(path)
	if err != nil {
		return err
	}
	ruleset.SourcePath = path
	r.rulesetCache[path] = ruleset
	if err := acc.addRuleset(ruleset); err != nil {
		return err
	}

	// A ruleset's own file may declare further imports in its first
	// document, same as a pipeline file can.
	docs, parseErr := parser.ParseBytes([]byte(raw))
	if parseErr != nil {
		return nil
	}
	for _, d := range docs {
		if d.Imports == nil {
			continue
		}
		for _, p := range d.Imports.Rules {
			if err := r.loadRulePath(p, acc); err != nil {
				return err
			}
		}
		for _, p := range d.Imports.Rulesets {
			if err := r.loadRulesetPath(p, acc); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateClosure enforces invariant I1 (rule ids and ruleset ids share a
// namespace) and I2 (every rule id a ruleset lists must resolve).
func validateClosure(rules map[string]ast.Rule, rulesets map[string]ast.Ruleset) error {
	for id := range rules {
		if _, ok := rulesets[id]; ok {
			return corinterr.NewIDConflict(id)
		}
	}
	for _, rs := range rulesets {
		for _, ruleID := range rs.RuleIDs {
			if _, ok := rules[ruleID]; !ok {
				return corinterr.NewInvalidValue("ruleset references unknown rule id", map[string]interface{}{
					"ruleset_id": rs.ID, "rule_id": ruleID,
				})
			}
		}
	}
	return nil
}
