package resolver

import (
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/pkg/corinterr"
)

// applyInheritance resolves every ruleset's `extends` chain and returns a
// new map keyed the same as the input, with each entry replaced by its
// fully merged form. The extends chain is walked independently per
// ruleset (simple, not memoized across calls) since rule libraries are
// small enough that re-walking ancestor chains is not a measurable cost.
func applyInheritance(rulesets map[string]ast.Ruleset) (map[string]ast.Ruleset, error) {
	resolved := make(map[string]ast.Ruleset, len(rulesets))
	for id := range rulesets {
		merged, err := resolveExtends(id, rulesets, make(map[string]bool), nil)
		if err != nil {
			return nil, err
		}
		resolved[id] = merged
	}
	return resolved, nil
}

func resolveExtends(id string, rulesets map[string]ast.Ruleset, visiting map[string]bool, chain []string) (ast.Ruleset, error) {
	rs, ok := rulesets[id]
	if !ok {
		return ast.Ruleset{}, corinterr.NewExtendsNotFound(id, "")
	}
	if !rs.HasExtends() {
		return rs, nil
	}
	if visiting[id] {
		full := append(append([]string{}, chain...), id)
		return ast.Ruleset{}, corinterr.NewCircularExtends(full)
	}
	visiting[id] = true
	chain = append(chain, id)

	parent, ok := rulesets[rs.Extends]
	if !ok {
		return ast.Ruleset{}, corinterr.NewExtendsNotFound(id, rs.Extends)
	}
	resolvedParent, err := resolveExtends(rs.Extends, rulesets, visiting, chain)
	if err != nil {
		return ast.Ruleset{}, err
	}
	_ = parent // resolvedParent already carries parent's own merge
	return mergeRuleset(resolvedParent, rs), nil
}

// mergeRuleset implements §4.2's inheritance merge: rule ids are the
// parent's ids in order, followed by the child's new ids; conclusion,
// name, description, and metadata are inherited only when the child
// leaves them empty.
func mergeRuleset(parent, child ast.Ruleset) ast.Ruleset {
	merged := child

	seen := make(map[string]bool, len(parent.RuleIDs)+len(child.RuleIDs))
	ids := make([]string, 0, len(parent.RuleIDs)+len(child.RuleIDs))
	for _, id := range parent.RuleIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range child.RuleIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	merged.RuleIDs = ids

	if len(child.Conclusion) == 0 {
		merged.Conclusion = parent.Conclusion
	}
	if child.Name == "" {
		merged.Name = parent.Name
	}
	if child.Description == "" {
		merged.Description = parent.Description
	}
	if child.Metadata == nil {
		merged.Metadata = parent.Metadata
	}
	return merged
}
