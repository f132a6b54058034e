package analyzer

import (
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/pkg/corinterr"
)

// AnalyzeRule validates a single Rule's structural requirements.
func AnalyzeRule(r ast.Rule) Result {
	var res Result
	if r.ID == "" {
		res.addError(corinterr.NewMissingField("rule.id"))
		return res
	}
	if r.Name == "" {
		res.addWarning(corinterr.NewDiagnostic(corinterr.CodeW002DeadEnd, "rule has no name", map[string]interface{}{"rule_id": r.ID}))
	}
	if err := ValidateWhen(r.When); err != nil {
		res.addError(err.WithContext(map[string]interface{}{"rule_id": r.ID}))
	}
	return res
}

// AnalyzeRuleset validates a Ruleset: non-empty id/name, no duplicate
// rule references, and recursive validation of every conclusion branch's
// condition.
func AnalyzeRuleset(rs ast.Ruleset) Result {
	var res Result
	if rs.ID == "" {
		res.addError(corinterr.NewMissingField("ruleset.id"))
		return res
	}
	if rs.Name == "" {
		res.addWarning(corinterr.NewDiagnostic(corinterr.CodeW002DeadEnd, "ruleset has no name", map[string]interface{}{"ruleset_id": rs.ID}))
	}

	seen := make(map[string]bool, len(rs.RuleIDs))
	for _, id := range rs.RuleIDs {
		if seen[id] {
			res.addError(corinterr.NewInvalidValue("duplicate rule reference inside ruleset",
				map[string]interface{}{"ruleset_id": rs.ID, "rule_id": id}))
			continue
		}
		seen[id] = true
	}

	sawDefault := false
	for i, branch := range rs.Conclusion {
		if branch.Default {
			sawDefault = true
			continue
		}
		if sawDefault {
			res.addWarning(corinterr.NewDiagnostic(corinterr.CodeW002DeadEnd,
				"conclusion branch follows a default branch and can never be reached",
				map[string]interface{}{"ruleset_id": rs.ID, "branch_index": i}))
		}
		if err := ValidateCondition(branch.Condition); err != nil {
			res.addError(err.WithContext(map[string]interface{}{"ruleset_id": rs.ID, "branch_index": i}))
		}
	}
	return res
}
