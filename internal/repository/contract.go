// Package repository defines the artifact-loading contract the import
// resolver depends on, plus two concrete backends: a filesystem tree and
// a git-backed tree (rule libraries versioned and reviewed the same way
// application code is). Repository backends are an open extension point —
// modeled as a capability interface, not a closed sum type — unlike the
// Expression AST, which is deliberately closed (see internal/ast doc
// comment).
package repository

import "github.com/corintai/corint/internal/ast"

// Repository loads authored artifacts by identifier. Identifiers are
// backend-defined; the filesystem backend treats them as relative paths,
// the git backend as paths within a pinned ref.
type Repository interface {
	LoadRule(id string) (ast.Rule, string, error)
	LoadRuleset(id string) (ast.Ruleset, string, error)
	LoadTemplate(id string) (ast.DecisionTemplate, string, error)
	LoadPipeline(id string) (ast.Pipeline, string, error)
	LoadRegistry() (string, error)

	Exists(id string) bool

	ListRules() ([]string, error)
	ListRulesets() ([]string, error)
	ListPipelines() ([]string, error)
	ListTemplates() ([]string, error)
}

// WritableRepository is the optional save/delete extension a backend may
// additionally implement.
type WritableRepository interface {
	Repository

	SaveRule(id string, rule ast.Rule, raw string) (version int, err error)
	SaveRuleset(id string, ruleset ast.Ruleset, raw string) (version int, err error)
	SavePipeline(id string, pipeline ast.Pipeline, raw string) (version int, err error)
	DeleteRule(id string) error
	DeleteRuleset(id string) error
	DeletePipeline(id string) error
}
