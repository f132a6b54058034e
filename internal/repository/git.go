package repository

import (
	"io"
	"sort"
	"strings"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/parser"
	"github.com/corintai/corint/pkg/corinterr"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitRepository resolves artifact ids as paths within the tree of a
// pinned ref of an already-cloned git repository. Rule libraries pinned
// to a ref give authors code-review and rollback for free; the resolver
// and analyzer see no difference between this and FilesystemRepository
// because both satisfy the same Repository contract.
type GitRepository struct {
	repo *git.Repository
	ref  string // branch, tag, or commit hash; "" means HEAD
}

// NewGitRepository opens the repository at localPath (already cloned —
// cloning is an operator concern, not this type's) pinned to ref.
func NewGitRepository(localPath, ref string) (*GitRepository, error) {
	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return nil, corinterr.New(corinterr.CodeImportNotFound, "cannot open git repository", err, map[string]interface{}{"path": localPath})
	}
	return &GitRepository{repo: repo, ref: ref}, nil
}

func (g *GitRepository) tree() (*object.Tree, error) {
	var hash plumbing.Hash
	if g.ref == "" {
		head, err := g.repo.Head()
		if err != nil {
			return nil, corinterr.New(corinterr.CodeImportNotFound, "cannot resolve HEAD", err, nil)
		}
		hash = head.Hash()
	} else {
		resolved, err := g.repo.ResolveRevision(plumbing.Revision(g.ref))
		if err != nil {
			return nil, corinterr.New(corinterr.CodeImportNotFound, "cannot resolve ref", err, map[string]interface{}{"ref": g.ref})
		}
		hash = *resolved
	}
	commit, err := g.repo.CommitObject(hash)
	if err != nil {
		return nil, corinterr.New(corinterr.CodeImportNotFound, "cannot load commit", err, map[string]interface{}{"hash": hash.String()})
	}
	return commit.Tree()
}

func (g *GitRepository) readRaw(id string) (string, error) {
	tree, err := g.tree()
	if err != nil {
		return "", err
	}
	file, err := tree.File(id)
	if err != nil {
		return "", corinterr.NewImportNotFound(id).WithContext(map[string]interface{}{"ref": g.ref, "cause": err.Error()})
	}
	reader, err := file.Reader()
	if err != nil {
		return "", corinterr.New(corinterr.CodeParseError, "cannot open blob", err, map[string]interface{}{"id": id})
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", corinterr.New(corinterr.CodeParseError, "cannot read blob", err, map[string]interface{}{"id": id})
	}
	return string(data), nil
}

func (g *GitRepository) LoadRule(id string) (ast.Rule, string, error) {
	raw, err := g.readRaw(id)
	if err != nil {
		return ast.Rule{}, "", err
	}
	return decodeOne(raw, id, func(d ast.Document) (ast.Rule, bool) {
		if d.Rule == nil {
			return ast.Rule{}, false
		}
		d.Rule.SourcePath = id
		return *d.Rule, true
	})
}

func (g *GitRepository) LoadRuleset(id string) (ast.Ruleset, string, error) {
	raw, err := g.readRaw(id)
	if err != nil {
		return ast.Ruleset{}, "", err
	}
	return decodeOne(raw, id, func(d ast.Document) (ast.Ruleset, bool) {
		if d.Ruleset == nil {
			return ast.Ruleset{}, false
		}
		d.Ruleset.SourcePath = id
		return *d.Ruleset, true
	})
}

func (g *GitRepository) LoadTemplate(id string) (ast.DecisionTemplate, string, error) {
	raw, err := g.readRaw(id)
	if err != nil {
		return ast.DecisionTemplate{}, "", err
	}
	return decodeOne(raw, id, func(d ast.Document) (ast.DecisionTemplate, bool) {
		if d.Template == nil {
			return ast.DecisionTemplate{}, false
		}
		d.Template.SourcePath = id
		return *d.Template, true
	})
}

func (g *GitRepository) LoadPipeline(id string) (ast.Pipeline, string, error) {
	raw, err := g.readRaw(id)
	if err != nil {
		return ast.Pipeline{}, "", err
	}
	return decodeOne(raw, id, func(d ast.Document) (ast.Pipeline, bool) {
		if d.Pipeline == nil {
			return ast.Pipeline{}, false
		}
		d.Pipeline.SourcePath = id
		return *d.Pipeline, true
	})
}

func (g *GitRepository) LoadRegistry() (string, error) {
	return g.readRaw("registry.yaml")
}

func (g *GitRepository) Exists(id string) bool {
	tree, err := g.tree()
	if err != nil {
		return false
	}
	_, err = tree.File(id)
	return err == nil
}

func (g *GitRepository) listUnder(prefix string) ([]string, error) {
	tree, err := g.tree()
	if err != nil {
		return nil, err
	}
	var out []string
	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()
	for {
		name, entry, err := walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, corinterr.New(corinterr.CodeParseError, "failed to walk git tree", err, nil)
		}
		if entry.Mode.IsFile() && strings.HasPrefix(name, prefix) && (strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (g *GitRepository) ListRules() ([]string, error)     { return g.listUnder("rules/") }
func (g *GitRepository) ListRulesets() ([]string, error)  { return g.listUnder("rulesets/") }
func (g *GitRepository) ListPipelines() ([]string, error) { return g.listUnder("pipelines/") }
func (g *GitRepository) ListTemplates() ([]string, error) { return g.listUnder("templates/") }

func decodeOne[T any](raw, id string, pick func(ast.Document) (T, bool)) (T, string, error) {
	var zero T
	docs, err := parser.ParseBytes([]byte(raw))
	if err != nil {
		return zero, "", err
	}
	for _, d := range docs {
		if v, ok := pick(d); ok {
			return v, raw, nil
		}
	}
	return zero, "", corinterr.NewInvalidValue("artifact document not found", map[string]interface{}{"id": id})
}
