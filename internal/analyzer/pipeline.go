package analyzer

import (
	"strings"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/pkg/corinterr"
)

// AnalyzePipeline validates a Pipeline's structural invariants (I3, I4,
// I5) and produces the coded E001-E007 / W001-W003 diagnostics.
func AnalyzePipeline(p ast.Pipeline) Result {
	var res Result

	if p.Entry == "" {
		res.addError(corinterr.NewDiagnostic(corinterr.CodeE001MissingEntry,
			"pipeline has no entry point", map[string]interface{}{"pipeline_id": p.ID}))
		return res // E001 is fatal and short-circuits further analysis
	}

	stepIndex := make(map[string]ast.Step, len(p.Steps))
	seen := make(map[string]bool, len(p.Steps))
	for _, s := range p.Steps {
		if seen[s.ID] {
			res.addError(corinterr.NewDiagnostic(corinterr.CodeE003DuplicateStepID,
				"duplicate step id", map[string]interface{}{"pipeline_id": p.ID, "step_id": s.ID}))
			continue
		}
		seen[s.ID] = true
		stepIndex[s.ID] = s
	}

	if _, ok := stepIndex[p.Entry]; !ok {
		res.addError(corinterr.NewDiagnostic(corinterr.CodeE002EntryNotFound,
			"entry does not match any step id", map[string]interface{}{"pipeline_id": p.ID, "entry": p.Entry}))
	}

	for _, s := range p.Steps {
		if s.IsRouter() {
			if s.Next != "" {
				res.addError(corinterr.NewDiagnostic(corinterr.CodeE004RouterHasNext,
					"router step has next", map[string]interface{}{"step_id": s.ID}))
			}
			if len(s.Routes) == 0 && s.Default == "" {
				res.addError(corinterr.NewDiagnostic(corinterr.CodeE005RouterNoRoutes,
					"router step lacks both routes and default", map[string]interface{}{"step_id": s.ID}))
			}
		}
		for _, target := range allTargets(s) {
			if target == ast.EndStep {
				continue
			}
			if _, ok := stepIndex[target]; !ok {
				res.addError(corinterr.NewDiagnostic(corinterr.CodeE006UnknownStepRef,
					"reference to non-existent step", map[string]interface{}{"step_id": s.ID, "target": target}))
			}
		}
	}

	if cycle := p.DetectCycle(); cycle != nil {
		res.addError(corinterr.NewDiagnostic(corinterr.CodeE007PipelineCycle,
			"circular dependency in pipeline transitions", map[string]interface{}{
				"pipeline_id": p.ID, "path": strings.Join(cycle, " -> "),
			}))
	}

	if res.HasErrors() {
		return res
	}

	reachable := p.ReachableFromEntry()
	for _, s := range p.Steps {
		if !reachable[s.ID] {
			res.addWarning(corinterr.NewDiagnostic(corinterr.CodeW001Unreachable,
				"step not reachable from entry", map[string]interface{}{"step_id": s.ID}))
			continue
		}
		if s.Next == "" && s.Default == "" && len(s.Routes) == 0 && !s.IsRouter() {
			res.addWarning(corinterr.NewDiagnostic(corinterr.CodeW002DeadEnd,
				"step has no next/routes/default", map[string]interface{}{"step_id": s.ID}))
		}
	}

	for _, s := range p.Steps {
		if !s.IsRouter() || len(s.Routes) < 2 {
			continue
		}
		targetsSeen := make(map[string]bool, len(s.Routes))
		for _, route := range s.Routes {
			if targetsSeen[route.Next] {
				res.addWarning(corinterr.NewDiagnostic(corinterr.CodeW003UnusedRoute,
					"route target duplicated by an earlier route in the same router",
					map[string]interface{}{"step_id": s.ID, "target": route.Next}))
			}
			targetsSeen[route.Next] = true
		}
	}

	return res
}

func allTargets(s ast.Step) []string {
	out := make([]string, 0, len(s.Routes)+2)
	if s.Next != "" {
		out = append(out, s.Next)
	}
	if s.Default != "" {
		out = append(out, s.Default)
	}
	for _, r := range s.Routes {
		out = append(out, r.Next)
	}
	return out
}
