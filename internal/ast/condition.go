package ast

// Condition is either a bare Expression or a nested ConditionGroup; the
// two are kept distinct from Expression itself so that WhenBlock's legacy
// `conditions` list (a flat AND-join) and `condition_group` (an explicit
// All/Any/Not tree) can both lower through the same type without forcing
// every Expression consumer to understand grouping.
type Condition struct {
	Expr  Expression  // set when Group is nil
	Group *ConditionGroup
}

// IsExpr reports whether this condition is a bare expression rather than
// a nested group.
func (c Condition) IsExpr() bool { return c.Group == nil }

// ConditionGroupKind distinguishes All/Any/Not nested condition groups.
type ConditionGroupKind int

const (
	GroupAll ConditionGroupKind = iota
	GroupAny
	GroupNot
)

// ConditionGroup is a nested boolean combination of Conditions. Not takes
// exactly one child; All/Any take zero or more.
type ConditionGroup struct {
	Kind     ConditionGroupKind
	Children []Condition
}

// WhenBlock is the guard attached to a Rule, a Ruleset conclusion branch,
// a pipeline, a pipeline step, or a registry entry. Invariant I7: at most
// one of ConditionGroup / Conditions is set; if neither is set and
// EventType is empty, the guard evaluates to true (vacuously matches).
type WhenBlock struct {
	EventType      string // matched against event.type if non-empty
	Conditions     []Condition
	ConditionGroup *ConditionGroup
}

// IsEmpty reports whether the guard has no constraints at all and
// therefore always evaluates to true.
func (w WhenBlock) IsEmpty() bool {
	return w.EventType == "" && len(w.Conditions) == 0 && w.ConditionGroup == nil
}
