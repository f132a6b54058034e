package repository

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/parser"
	"github.com/corintai/corint/pkg/corinterr"
)

// FilesystemRepository resolves artifact ids as paths relative to Root.
// It is the reference backend for local development and for tests;
// production deployments more commonly point at GitRepository or a
// database-backed implementation outside this module's scope.
type FilesystemRepository struct {
	Root string
}

// NewFilesystemRepository returns a repository rooted at root.
func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{Root: root}
}

func (f *FilesystemRepository) resolvePath(id string) string {
	return filepath.Join(f.Root, filepath.FromSlash(id))
}

func (f *FilesystemRepository) readRaw(id string) (string, error) {
	path := f.resolvePath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", corinterr.NewImportNotFound(id).WithContext(map[string]interface{}{"resolved_path": path, "cause": err.Error()})
	}
	return string(data), nil
}

func (f *FilesystemRepository) LoadRule(id string) (ast.Rule, string, error) {
	raw, err := f.readRaw(id)
	if err != nil {
		return ast.Rule{}, "", err
	}
	docs, err := parser.ParseBytes([]byte(raw))
	if err != nil {
		return ast.Rule{}, "", err
	}
	for _, d := range docs {
		if d.Rule != nil {
			d.Rule.SourcePath = id
			return *d.Rule, raw, nil
		}
	}
	return ast.Rule{}, "", corinterr.NewInvalidValue("file does not contain a rule document", map[string]interface{}{"id": id})
}

func (f *FilesystemRepository) LoadRuleset(id string) (ast.Ruleset, string, error) {
	raw, err := f.readRaw(id)
	if err != nil {
		return ast.Ruleset{}, "", err
	}
	docs, err := parser.ParseBytes([]byte(raw))
	if err != nil {
		return ast.Ruleset{}, "", err
	}
	for _, d := range docs {
		if d.Ruleset != nil {
			d.Ruleset.SourcePath = id
			return *d.Ruleset, raw, nil
		}
	}
	return ast.Ruleset{}, "", corinterr.NewInvalidValue("file does not contain a ruleset document", map[string]interface{}{"id": id})
}

func (f *FilesystemRepository) LoadTemplate(id string) (ast.DecisionTemplate, string, error) {
	raw, err := f.readRaw(id)
	if err != nil {
		return ast.DecisionTemplate{}, "", err
	}
	docs, err := parser.ParseBytes([]byte(raw))
	if err != nil {
		return ast.DecisionTemplate{}, "", err
	}
	for _, d := range docs {
		if d.Template != nil {
			d.Template.SourcePath = id
			return *d.Template, raw, nil
		}
	}
	return ast.DecisionTemplate{}, "", corinterr.NewInvalidValue("file does not contain a template document", map[string]interface{}{"id": id})
}

func (f *FilesystemRepository) LoadPipeline(id string) (ast.Pipeline, string, error) {
	raw, err := f.readRaw(id)
	if err != nil {
		return ast.Pipeline{}, "", err
	}
	docs, err := parser.ParseBytes([]byte(raw))
	if err != nil {
		return ast.Pipeline{}, "", err
	}
	for _, d := range docs {
		if d.Pipeline != nil {
			d.Pipeline.SourcePath = id
			return *d.Pipeline, raw, nil
		}
	}
	return ast.Pipeline{}, "", corinterr.NewInvalidValue("file does not contain a pipeline document", map[string]interface{}{"id": id})
}

func (f *FilesystemRepository) LoadRegistry() (string, error) {
	return f.readRaw("registry.yaml")
}

func (f *FilesystemRepository) Exists(id string) bool {
	_, err := os.Stat(f.resolvePath(id))
	return err == nil
}

func (f *FilesystemRepository) listYAML(subdir string) ([]string, error) {
	root := filepath.Join(f.Root, subdir)
	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}
		rel, relErr := filepath.Rel(f.Root, path)
		if relErr != nil {
			return relErr
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, corinterr.New(corinterr.CodeParseError, "failed to list artifacts", err, map[string]interface{}{"subdir": subdir})
	}
	sort.Strings(out)
	return out, nil
}

func (f *FilesystemRepository) ListRules() ([]string, error)     { return f.listYAML("rules") }
func (f *FilesystemRepository) ListRulesets() ([]string, error)  { return f.listYAML("rulesets") }
func (f *FilesystemRepository) ListPipelines() ([]string, error) { return f.listYAML("pipelines") }
func (f *FilesystemRepository) ListTemplates() ([]string, error) { return f.listYAML("templates") }
