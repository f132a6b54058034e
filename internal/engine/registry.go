package engine

import (
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/exprvm"
	"github.com/corintai/corint/internal/value"
)

// ErrNoMatchingPipeline is returned by SelectPipeline when the registry's
// DefaultReject is set, DefaultPipelineID is empty, and no entry matched.
type ErrNoMatchingPipeline struct{}

func (ErrNoMatchingPipeline) Error() string { return "no registry entry matched the event" }

// ApprovedWithoutPipeline is returned by SelectPipeline when neither an entry nor
// DefaultPipelineID match and DefaultReject is false: the caller should
// synthesize an approve decision without invoking the VM at all.
type ApprovedWithoutPipeline struct{}

func (ApprovedWithoutPipeline) Error() string { return "default-approved: no pipeline selected" }

// SelectPipeline dispatches event to the first ast.RegistryEntry whose
// guard matches, in declaration order (§4.7). Falling through every entry
// resolves per reg's configured default: a named fallback pipeline,
// outright rejection (DefaultReject), or implicit approval.
func SelectPipeline(reg ast.Registry, event value.Value) (string, error) {
	obj, ok := event.(value.Object)
	if !ok {
		obj = value.Object{}
	}
	resolver := exprvm.MapResolver(obj)

	for _, entry := range reg.Entries {
		matched, err := matchesWhen(entry.When, resolver)
		if err != nil {
			return "", err
		}
		if matched {
			return entry.PipelineID, nil
		}
	}

	if reg.DefaultPipelineID != "" {
		return reg.DefaultPipelineID, nil
	}
	if reg.DefaultReject {
		return "", ErrNoMatchingPipeline{}
	}
	return "", ApprovedWithoutPipeline{}
}

// matchesWhen evaluates a guard's EventType check followed by its
// condition/group tree, the same two-part evaluation a compiled rule
// performs (CompileRule's CheckEventType, then lowerRuleGuard) — done here directly over
// exprvm against the raw event, since registry dispatch runs before any
// program is selected or compiled.
func matchesWhen(w ast.WhenBlock, resolver exprvm.FieldResolver) (bool, error) {
	if w.EventType != "" {
		actual := resolver.Resolve([]string{"type"})
		s, ok := actual.(value.String)
		if !ok || string(s) != w.EventType {
			return false, nil
		}
	}
	if w.ConditionGroup != nil {
		return exprvm.EvalCondition(ast.Condition{Group: w.ConditionGroup}, resolver)
	}
	for _, c := range w.Conditions {
		ok, err := exprvm.EvalCondition(c, resolver)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
