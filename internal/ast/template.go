package ast

// DecisionTemplate is a reusable, parameterized Ruleset skeleton that
// concrete rulesets may reference via their Template field. CORINT treats
// templates as plain data substituted at resolution time; they carry no
// independent runtime behavior.
type DecisionTemplate struct {
	ID          string
	Name        string
	Description string
	RuleIDs     []string
	Conclusion  []ConclusionBranch
	Defaults    map[string]interface{}

	SourcePath string
}

// Document is the sum of artifact kinds a single parsed YAML document may
// carry, mirroring the parser contract: `Rule | Ruleset | Pipeline |
// Registry | DecisionTemplate`. Exactly one field is non-nil per document
// except Imports, which may accompany any of them in the first document
// of a multi-document file.
type Document struct {
	Rule     *Rule
	Ruleset  *Ruleset
	Pipeline *Pipeline
	Registry *Registry
	Template *DecisionTemplate
	Imports  *Imports
	Version  string
}
