// Package parser turns authored YAML source into internal/ast documents:
// multi-document files, the first of which may carry `version` and
// `import`, and a free-form condition-string grammar for inline guards.
package parser

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/pkg/corinterr"
	"gopkg.in/yaml.v3"
)

var yamlErrorLine = regexp.MustCompile(`line (\d+)`)

// ParseFile reads path and parses every YAML document it contains.
func ParseFile(path string) ([]ast.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, corinterr.New(corinterr.CodeParseError, "cannot read file", err, map[string]interface{}{"path": path})
	}
	docs, err := ParseBytes(data)
	if err != nil {
		if ce, ok := err.(*corinterr.CorintError); ok {
			return nil, ce.WithContext(map[string]interface{}{"path": path})
		}
		return nil, corinterr.NewParseError(path, extractLine(err), err)
	}
	return docs, nil
}

// ParseBytes parses a multi-document YAML byte stream. Inline definitions
// in later documents take precedence over imports declared in the first
// document with the same id — resolving that precedence is the import
// resolver's job (C4), not the parser's; ParseBytes only separates the
// documents.
func ParseBytes(data []byte) ([]ast.Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var docs []ast.Document
	for i := 0; ; i++ {
		var raw rawDocument
		err := dec.Decode(&raw)
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, corinterr.NewParseError("", extractLine(err), err)
		}
		doc, err := convertDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func convertDocument(raw rawDocument) (ast.Document, error) {
	doc := ast.Document{Version: raw.Version, Imports: convertImports(raw.Import)}
	switch {
	case raw.Rule != nil:
		r, err := convertRule(*raw.Rule, "")
		if err != nil {
			return ast.Document{}, err
		}
		doc.Rule = &r
	case raw.Ruleset != nil:
		r, err := convertRuleset(*raw.Ruleset, "")
		if err != nil {
			return ast.Document{}, err
		}
		doc.Ruleset = &r
	case raw.Pipeline != nil:
		p, err := convertPipeline(*raw.Pipeline, "")
		if err != nil {
			return ast.Document{}, err
		}
		doc.Pipeline = &p
	case raw.Registry != nil:
		reg, err := convertRegistry(*raw.Registry)
		if err != nil {
			return ast.Document{}, err
		}
		doc.Registry = &reg
	case raw.Template != nil:
		tmpl, err := convertTemplate(*raw.Template, "")
		if err != nil {
			return ast.Document{}, err
		}
		doc.Template = &tmpl
	}
	return doc, nil
}

func extractLine(err error) int {
	m := yamlErrorLine.FindStringSubmatch(err.Error())
	if len(m) < 2 {
		return 0
	}
	var line int
	_, scanErr := fmt.Sscanf(m[1], "%d", &line)
	if scanErr != nil {
		return 0
	}
	return line
}
