package parser

import (
	"fmt"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/pkg/corinterr"
	"gopkg.in/yaml.v3"
)

func convertCondNode(n yaml.Node) (ast.Condition, error) {
	switch n.Kind {
	case 0:
		return ast.Condition{}, corinterr.NewInvalidValue("empty condition node", nil)
	case yaml.ScalarNode:
		expr, err := ParseConditionString(n.Value)
		if err != nil {
			return ast.Condition{}, err
		}
		return ast.Condition{Expr: expr}, nil
	case yaml.MappingNode:
		var grp rawCondGroup
		if err := n.Decode(&grp); err != nil {
			return ast.Condition{}, corinterr.NewParseError("", n.Line, err)
		}
		group, err := convertCondGroup(grp)
		if err != nil {
			return ast.Condition{}, err
		}
		return ast.Condition{Group: &group}, nil
	default:
		return ast.Condition{}, corinterr.NewInvalidValue("unsupported condition node kind", nil)
	}
}

func convertCondGroup(g rawCondGroup) (ast.ConditionGroup, error) {
	switch {
	case len(g.All) > 0:
		children, err := convertCondNodes(g.All)
		if err != nil {
			return ast.ConditionGroup{}, err
		}
		return ast.ConditionGroup{Kind: ast.GroupAll, Children: children}, nil
	case len(g.Any) > 0:
		children, err := convertCondNodes(g.Any)
		if err != nil {
			return ast.ConditionGroup{}, err
		}
		return ast.ConditionGroup{Kind: ast.GroupAny, Children: children}, nil
	case g.Not != nil:
		child, err := convertCondNode(g.Not.node)
		if err != nil {
			return ast.ConditionGroup{}, err
		}
		return ast.ConditionGroup{Kind: ast.GroupNot, Children: []ast.Condition{child}}, nil
	default:
		return ast.ConditionGroup{}, corinterr.NewInvalidValue("condition_group requires one of all/any/not", nil)
	}
}

func convertCondNodes(nodes []rawCondNode) ([]ast.Condition, error) {
	out := make([]ast.Condition, 0, len(nodes))
	for _, n := range nodes {
		c, err := convertCondNode(n.node)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// convertWhen lowers a rawWhen into an ast.WhenBlock, enforcing invariant
// I7 (at most one of condition_group / legacy conditions).
func convertWhen(w rawWhen) (ast.WhenBlock, error) {
	if len(w.Conditions) > 0 && w.ConditionGroup != nil {
		return ast.WhenBlock{}, corinterr.NewInvalidValue("when block may not set both conditions and condition_group", nil)
	}
	wb := ast.WhenBlock{EventType: w.EventType}
	if len(w.Conditions) > 0 {
		conds := make([]ast.Condition, 0, len(w.Conditions))
		for _, s := range w.Conditions {
			expr, err := ParseConditionString(s)
			if err != nil {
				return ast.WhenBlock{}, err
			}
			conds = append(conds, ast.Condition{Expr: expr})
		}
		wb.Conditions = conds
	}
	if w.ConditionGroup != nil {
		group, err := convertCondGroup(*w.ConditionGroup)
		if err != nil {
			return ast.WhenBlock{}, err
		}
		wb.ConditionGroup = &group
	}
	return wb, nil
}

// whenToCondition flattens a WhenBlock (event_type + conditions +
// condition_group) into a single Condition tree, for contexts — ruleset
// conclusion branches, routes, registry entries — that need one
// evaluable guard rather than the richer Rule-level WhenBlock shape.
func whenToCondition(wb ast.WhenBlock) ast.Condition {
	var parts []ast.Condition
	if wb.EventType != "" {
		parts = append(parts, ast.Condition{Expr: ast.Binary{
			Left:  ast.FieldAccess{Path: []string{"event", "type"}},
			Op:    ast.OpEq,
			Right: ast.Literal{Value: value.String(wb.EventType)},
		}})
	}
	parts = append(parts, wb.Conditions...)
	if wb.ConditionGroup != nil {
		parts = append(parts, ast.Condition{Group: wb.ConditionGroup})
	}
	switch len(parts) {
	case 0:
		return ast.Condition{Expr: ast.Literal{Value: value.Bool(true)}}
	case 1:
		return parts[0]
	default:
		group := ast.ConditionGroup{Kind: ast.GroupAll, Children: parts}
		return ast.Condition{Group: &group}
	}
}

func convertRule(r rawRule, sourcePath string) (ast.Rule, error) {
	if r.ID == "" {
		return ast.Rule{}, corinterr.NewMissingField("rule.id")
	}
	when, err := convertWhen(r.When)
	if err != nil {
		return ast.Rule{}, err
	}
	return ast.Rule{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		When:        when,
		Score:       r.Score,
		Params:      r.Params,
		Metadata:    r.Metadata,
		SourcePath:  sourcePath,
	}, nil
}

func convertSignal(branch rawConclusionBranch) (ast.Signal, error) {
	if branch.Infer != nil {
		return ast.Signal{Kind: ast.SignalInfer, InferCfg: &ast.InferConfig{
			Provider: branch.Infer.Provider,
			Model:    branch.Infer.Model,
			Prompt:   branch.Infer.Prompt,
		}}, nil
	}
	name := branch.Signal
	if name == "" {
		name = branch.Action
	}
	switch name {
	case "approve":
		return ast.Signal{Kind: ast.SignalApprove}, nil
	case "review":
		return ast.Signal{Kind: ast.SignalReview}, nil
	case "challenge":
		return ast.Signal{Kind: ast.SignalChallenge}, nil
	case "deny":
		return ast.Signal{Kind: ast.SignalDeny}, nil
	default:
		return ast.Signal{}, corinterr.NewInvalidValue(fmt.Sprintf("unknown signal/action %q", name), nil)
	}
}

func convertConclusionBranches(branches []rawConclusionBranch) ([]ast.ConclusionBranch, error) {
	out := make([]ast.ConclusionBranch, 0, len(branches))
	for _, b := range branches {
		sig, err := convertSignal(b)
		if err != nil {
			return nil, err
		}
		branch := ast.ConclusionBranch{
			Default:   b.Default,
			Action:    sig,
			Reason:    b.Reason,
			Terminate: b.Terminate,
		}
		if !b.Default {
			wb, err := convertWhen(b.When)
			if err != nil {
				return nil, err
			}
			branch.Condition = whenToCondition(wb)
		}
		out = append(out, branch)
	}
	return out, nil
}

func convertRuleset(r rawRuleset, sourcePath string) (ast.Ruleset, error) {
	if r.ID == "" {
		return ast.Ruleset{}, corinterr.NewMissingField("ruleset.id")
	}
	conclusion, err := convertConclusionBranches(r.Conclusion)
	if err != nil {
		return ast.Ruleset{}, err
	}
	return ast.Ruleset{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Extends:     r.Extends,
		RuleIDs:     r.Rules,
		Conclusion:  conclusion,
		Template:    r.Template,
		Metadata:    r.Metadata,
		SourcePath:  sourcePath,
	}, nil
}

func convertRoute(r rawRoute) (ast.Route, error) {
	wb, err := convertWhen(r.When)
	if err != nil {
		return ast.Route{}, err
	}
	return ast.Route{When: wb, Next: r.Next}, nil
}

func convertStep(s rawStep) (ast.Step, error) {
	if s.ID == "" {
		return ast.Step{}, corinterr.NewMissingField("step.id")
	}
	if !ast.ValidID(s.ID) {
		return ast.Step{}, corinterr.NewInvalidValue("step id contains invalid characters", map[string]interface{}{"id": s.ID})
	}
	step := ast.Step{
		ID:       s.ID,
		Name:     s.Name,
		Type:     ast.ParseStepType(s.Type),
		Default:  s.Default,
		Next:     s.Next,
		RulesetID: s.Ruleset,
		Metadata: s.Metadata,
	}
	if s.When != nil {
		wb, err := convertWhen(*s.When)
		if err != nil {
			return ast.Step{}, err
		}
		step.Guard = &wb
	}
	for _, r := range s.Routes {
		route, err := convertRoute(r)
		if err != nil {
			return ast.Step{}, err
		}
		step.Routes = append(step.Routes, route)
	}
	if step.Type == ast.StepService {
		step.ServiceRef = &ast.ServiceCallConfig{
			Service: s.Service,
			Op:      s.Op,
			Params:  convertParams(s.Params),
			OutVar:  s.OutVar,
		}
	}
	if step.Type == ast.StepAPI {
		step.APIRef = &ast.APICallConfig{
			API:       s.API,
			Endpoint:  s.Endpoint,
			Params:    convertParams(s.Params),
			TimeoutMS: s.TimeoutMS,
			OutVar:    s.OutVar,
		}
		if s.Fallback != nil {
			step.APIRef.Fallback = value.FromNative(s.Fallback)
		}
	}
	return step, nil
}

func convertParams(m map[string]interface{}) map[string]value.Value {
	if m == nil {
		return nil
	}
	out := make(map[string]value.Value, len(m))
	for k, v := range m {
		out[k] = value.FromNative(v)
	}
	return out
}

func convertPipeline(p rawPipeline, sourcePath string) (ast.Pipeline, error) {
	if p.ID == "" {
		return ast.Pipeline{}, corinterr.NewMissingField("pipeline.id")
	}
	if p.Entry == "" {
		return ast.Pipeline{}, corinterr.NewDiagnostic(corinterr.CodeE001MissingEntry, "pipeline has no entry", map[string]interface{}{"pipeline_id": p.ID})
	}
	pipeline := ast.Pipeline{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Entry:       p.Entry,
		Metadata:    p.Metadata,
		SourcePath:  sourcePath,
	}
	if p.When != nil {
		wb, err := convertWhen(*p.When)
		if err != nil {
			return ast.Pipeline{}, err
		}
		pipeline.When = &wb
	}
	for _, s := range p.Steps {
		step, err := convertStep(s)
		if err != nil {
			return ast.Pipeline{}, err
		}
		pipeline.Steps = append(pipeline.Steps, step)
	}
	return pipeline, nil
}

func convertRegistry(r rawRegistry) (ast.Registry, error) {
	reg := ast.Registry{DefaultPipelineID: r.Default, DefaultReject: r.DefaultReject}
	for _, e := range r.Entries {
		wb, err := convertWhen(e.When)
		if err != nil {
			return ast.Registry{}, err
		}
		reg.Entries = append(reg.Entries, ast.RegistryEntry{When: wb, PipelineID: e.Pipeline})
	}
	return reg, nil
}

func convertTemplate(t rawTemplate, sourcePath string) (ast.DecisionTemplate, error) {
	if t.ID == "" {
		return ast.DecisionTemplate{}, corinterr.NewMissingField("template.id")
	}
	conclusion, err := convertConclusionBranches(t.Conclusion)
	if err != nil {
		return ast.DecisionTemplate{}, err
	}
	return ast.DecisionTemplate{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		RuleIDs:     t.Rules,
		Conclusion:  conclusion,
		Defaults:    t.Defaults,
		SourcePath:  sourcePath,
	}, nil
}

func convertImports(i *rawImports) *ast.Imports {
	if i == nil {
		return nil
	}
	return &ast.Imports{Rules: i.Rules, Rulesets: i.Rulesets, Pipelines: i.Pipelines, Templates: i.Templates}
}
