package compiler

import (
	"encoding/json"
	"fmt"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
)

// stepDescriptor is the JSON-serializable shape recorded under the
// "steps_json" Meta key so the trace recorder can render a step's type,
// successor, and router branches without re-walking the Pipeline AST.
type stepDescriptor struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Next    string            `json:"next,omitempty"`
	Default string            `json:"default,omitempty"`
	Routes  []routeDescriptor `json:"routes,omitempty"`
}

type routeDescriptor struct {
	Next string `json:"next"`
}

func encodeStepsJSON(order []ast.Step) string {
	descriptors := make([]stepDescriptor, len(order))
	for i, step := range order {
		d := stepDescriptor{ID: step.ID, Type: step.Type.String(), Next: step.Next, Default: step.Default}
		for _, r := range step.Routes {
			d.Routes = append(d.Routes, routeDescriptor{Next: r.Next})
		}
		descriptors[i] = d
	}
	out, err := json.Marshal(descriptors)
	if err != nil {
		return "[]"
	}
	return string(out)
}

type pendingJump struct {
	idx    int
	target string // step id, or ast.EndStep
}

// CompilePipeline lowers a Pipeline per §4.4.4. Steps are visited in
// topological order starting from Entry (unreachable steps are omitted —
// W001 is raised by the analyzer, not here). Every inter-step transition
// is emitted as a placeholder Jump and resolved once every step's start
// position and the trailing Return's position are known.
func CompilePipeline(p ast.Pipeline) (*bytecode.Program, error) {
	em := newEmitter()

	var pipelineGuardJump = -1
	if p.When != nil && !p.When.IsEmpty() {
		if err := lowerRuleGuard(*p.When, em); err != nil {
			return nil, err
		}
		pipelineGuardJump = em.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse})
	}

	order, err := topoSortSteps(p)
	if err != nil {
		return nil, err
	}

	stepStart := make(map[string]int, len(order))
	var pending []pendingJump

	for _, step := range order {
		stepStart[step.ID] = em.pos()

		var guardJump = -1
		if step.Guard != nil && !step.Guard.IsEmpty() && !step.IsRouter() {
			if err := lowerRuleGuard(*step.Guard, em); err != nil {
				return nil, err
			}
			guardJump = em.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse})
		}

		switch step.Type {
		case ast.StepRouter:
			for i, route := range step.Routes {
				if err := lowerRuleGuard(route.When, em); err != nil {
					return nil, err
				}
				em.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse, Offset: 3})
				em.emit(bytecode.Instruction{
					Op: bytecode.OpMarkStepExecuted, StepID: step.ID, NextStepID: route.Next,
					RouteIndex: i, IsDefaultRoute: false,
				})
				idx := em.emit(bytecode.Instruction{Op: bytecode.OpJump})
				pending = append(pending, pendingJump{idx, normalizeTarget(route.Next)})
			}
			if step.Default != "" {
				em.emit(bytecode.Instruction{
					Op: bytecode.OpMarkStepExecuted, StepID: step.ID, NextStepID: step.Default,
					IsDefaultRoute: true,
				})
				idx := em.emit(bytecode.Instruction{Op: bytecode.OpJump})
				pending = append(pending, pendingJump{idx, normalizeTarget(step.Default)})
			}

		case ast.StepRuleset:
			em.emit(bytecode.Instruction{Op: bytecode.OpMarkStepExecuted, StepID: step.ID, NextStepID: step.Next})
			em.emit(bytecode.Instruction{Op: bytecode.OpCallRuleset, RuleID: step.RulesetID})
			pending = append(pending, emitNextJump(em, step)...)

		case ast.StepService:
			em.emit(bytecode.Instruction{Op: bytecode.OpMarkStepExecuted, StepID: step.ID, NextStepID: step.Next})
			cfg := step.ServiceRef
			em.emit(bytecode.Instruction{Op: bytecode.OpCallService, Svc: cfg.Service, Endpoint: cfg.Op, Params: cfg.Params})
			outVar := cfg.OutVar
			if outVar == "" {
				outVar = fmt.Sprintf("service.%s", cfg.Service)
			}
			em.emit(bytecode.Instruction{Op: bytecode.OpStore, Name: outVar})
			pending = append(pending, emitNextJump(em, step)...)

		case ast.StepAPI:
			em.emit(bytecode.Instruction{Op: bytecode.OpMarkStepExecuted, StepID: step.ID, NextStepID: step.Next})
			cfg := step.APIRef
			em.emit(bytecode.Instruction{
				Op: bytecode.OpCallExternal, API: cfg.API, Endpoint: cfg.Endpoint, Params: cfg.Params,
				TimeoutMS: cfg.TimeoutMS, Fallback: cfg.Fallback, HasFallback: cfg.Fallback != nil,
			})
			outVar := cfg.OutVar
			if outVar == "" {
				outVar = fmt.Sprintf("api.%s.%s", cfg.API, cfg.Endpoint)
			}
			em.emit(bytecode.Instruction{Op: bytecode.OpStore, Name: outVar})
			pending = append(pending, emitNextJump(em, step)...)

		default: // Function / Trigger / Rule / SubPipeline / Unknown: conservative no-op body.
			em.emit(bytecode.Instruction{Op: bytecode.OpMarkStepExecuted, StepID: step.ID, NextStepID: step.Next})
			pending = append(pending, emitNextJump(em, step)...)
		}

		if guardJump >= 0 {
			pending = append(pending, pendingJump{guardJump, normalizeTarget(step.Next)})
		}
	}

	returnIdx := em.emit(bytecode.Instruction{Op: bytecode.OpReturn})

	if pipelineGuardJump >= 0 {
		em.patchTo(pipelineGuardJump, returnIdx)
	}
	for _, pj := range pending {
		if pj.target == ast.EndStep {
			em.patchTo(pj.idx, returnIdx)
			continue
		}
		start, ok := stepStart[pj.target]
		if !ok {
			return nil, fmt.Errorf("compiler: pipeline %q references unknown step %q", p.ID, pj.target)
		}
		em.patchTo(pj.idx, start)
	}

	return &bytecode.Program{
		Instructions: em.program(),
		SourceType:   bytecode.SourcePipeline,
		SourceID:     p.ID,
		Name:         p.Name,
		Meta: map[string]string{
			"pipeline_id": p.ID,
			"name":        p.Name,
			"description": p.Description,
			"entry":       p.Entry,
			"steps_json":  encodeStepsJSON(order),
		},
	}, nil
}

// emitNextJump emits the unconditional placeholder Jump to a step's Next
// target, when one is declared.
func emitNextJump(em *emitter, step ast.Step) []pendingJump {
	if step.Next == "" {
		return nil
	}
	idx := em.emit(bytecode.Instruction{Op: bytecode.OpJump})
	return []pendingJump{{idx, normalizeTarget(step.Next)}}
}

func normalizeTarget(target string) string {
	if target == "" {
		return ast.EndStep
	}
	return target
}
