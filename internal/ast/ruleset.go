package ast

// ConclusionBranch is one entry in a Ruleset's ordered Conclusion list.
// Exactly one of Condition / Default is meaningful: a Default branch has
// no condition and always matches once reached.
type ConclusionBranch struct {
	Condition Condition
	Default   bool
	Action    Signal
	Reason    string
	Terminate bool
}

// Ruleset groups an ordered list of rule ids under a shared Conclusion.
// Extends names a parent ruleset id for inheritance (invariant I6: the
// extends chain must be acyclic).
type Ruleset struct {
	ID          string
	Name        string
	Description string
	Extends     string
	RuleIDs     []string
	Conclusion  []ConclusionBranch
	Template    string
	Metadata    map[string]interface{}

	SourcePath string
}

// HasExtends reports whether this ruleset inherits from a parent.
func (r Ruleset) HasExtends() bool { return r.Extends != "" }
