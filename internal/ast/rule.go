package ast

// Rule is the smallest authored artifact: a guard plus a score delta
// applied when the guard passes.
type Rule struct {
	ID          string
	Name        string
	Description string
	When        WhenBlock
	Score       int
	Params      map[string]interface{}
	Metadata    map[string]interface{}

	// SourcePath records which file this rule was loaded from, for
	// DuplicateRuleId diagnostics that must report both paths.
	SourcePath string
}
