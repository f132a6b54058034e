package vm

import (
	"context"

	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/pkg/corinterr"
)

// Tracer receives step-executed and rule-triggered events when a request opted
// into ExecutionTrace (§4.6). Left nil, the Machine records no trace
// overhead beyond the Result accumulator it always maintains.
type Tracer interface {
	StepExecuted(stepID, nextStepID string, routeIndex int, isDefault bool)
	RuleTriggered(ruleID string, scoreDelta float64)
}

// Machine is the bytecode interpreter (C7). Collaborator fields are nil-
// able: a nil collaborator takes the documented fallback behavior named
// in §4.5/§7 (e.g. CallFeature returns 0 without a backing store) rather
// than panicking, so a Machine can run rule/ruleset programs standalone in
// tests with no pipeline-level collaborators wired at all.
type Machine struct {
	Rulesets RulesetPrograms
	Features FeatureExtractor
	External ExternalCaller
	Services ServiceCaller
	LLM      LLMProvider
	Lists    ListBackend
	Trace    Tracer
}

// Execute runs prog against ectx to completion: pc=0, dispatch until
// Return or falling off the end. The operand stack, variables, and result
// accumulator are threaded through ectx, so nested CallRuleset invocations
// share the result accumulator and variables while getting a fresh
// operand stack (§4.5).
func (m *Machine) Execute(ctx context.Context, prog *bytecode.Program, ectx *value.Context) error {
	pc := 0
	for pc < prog.Len() {
		in := prog.Instructions[pc]
		next := pc + 1

		switch in.Op {
		case bytecode.OpLoadField:
			v, err := m.loadField(ctx, ectx, in.Path)
			if err != nil {
				return err
			}
			ectx.Push(v)

		case bytecode.OpLoadConst:
			ectx.Push(in.Const)

		case bytecode.OpBinaryOp:
			right, left, err := popTwo(ectx)
			if err != nil {
				return err
			}
			v, err := applyBinaryOp(in.BinOp, left, right)
			if err != nil {
				return err
			}
			ectx.Push(v)

		case bytecode.OpCompare:
			right, left, err := popTwo(ectx)
			if err != nil {
				return err
			}
			v, err := applyCompare(in.BinOp, left, right)
			if err != nil {
				return err
			}
			ectx.Push(v)

		case bytecode.OpUnaryOp:
			operand, ok := ectx.Pop()
			if !ok {
				return corinterr.NewStackError("unary op on empty stack")
			}
			v, err := applyUnaryOp(in.UnOp, operand)
			if err != nil {
				return err
			}
			ectx.Push(v)

		case bytecode.OpJump:
			next = pc + in.Offset

		case bytecode.OpJumpIfTrue:
			cond, ok := ectx.Pop()
			if !ok {
				return corinterr.NewStackError("jump-if-true on empty stack")
			}
			if cond.Truthy() {
				next = pc + in.Offset
			}

		case bytecode.OpJumpIfFalse:
			cond, ok := ectx.Pop()
			if !ok {
				return corinterr.NewStackError("jump-if-false on empty stack")
			}
			if !cond.Truthy() {
				next = pc + in.Offset
			}

		case bytecode.OpReturn:
			return nil

		case bytecode.OpCheckEventType:
			actual := resolveNested(ectx.Namespaces["event"], []string{"type"})
			s, ok := actual.(value.String)
			if !ok || string(s) != in.Expected {
				return nil
			}

		case bytecode.OpSetScore:
			ectx.Result.SetScore(in.Score)

		case bytecode.OpAddScore:
			ectx.Result.AddScore(in.Score)

		case bytecode.OpSetAction:
			ectx.Result.SetAction(in.Action)
			if in.Action != "" {
				ectx.Result.Explain(in.Action)
			}

		case bytecode.OpSetSignal:
			ectx.Result.SetSignal(in.Signal)

		case bytecode.OpMarkRuleTriggered:
			ectx.Result.MarkRuleTriggered(in.RuleID)
			if m.Trace != nil {
				m.Trace.RuleTriggered(in.RuleID, 0)
			}

		case bytecode.OpMarkStepExecuted:
			ectx.Result.MarkStepExecuted(in.StepID)
			if m.Trace != nil {
				m.Trace.StepExecuted(in.StepID, in.NextStepID, in.RouteIndex, in.IsDefaultRoute)
			}

		case bytecode.OpCallRuleset:
			if err := m.callRuleset(ctx, ectx, in.RuleID); err != nil {
				return err
			}

		case bytecode.OpCallFeature:
			if err := m.callFeature(ctx, ectx, in); err != nil {
				return err
			}

		case bytecode.OpCallService:
			if err := m.callService(ctx, ectx, in); err != nil {
				return err
			}

		case bytecode.OpCallExternal:
			if err := m.callExternal(ctx, ectx, in); err != nil {
				return err
			}

		case bytecode.OpCallLLM:
			if err := m.callLLM(ctx, ectx, in); err != nil {
				return err
			}

		case bytecode.OpDup:
			v, ok := ectx.Peek()
			if !ok {
				return corinterr.NewStackError("dup on empty stack")
			}
			ectx.Push(v)

		case bytecode.OpPop:
			if _, ok := ectx.Pop(); !ok {
				return corinterr.NewStackError("pop on empty stack")
			}

		case bytecode.OpSwap:
			a, b, err := popTwo(ectx)
			if err != nil {
				return err
			}
			ectx.Push(a)
			ectx.Push(b)

		case bytecode.OpStore:
			v, ok := ectx.Pop()
			if !ok {
				return corinterr.NewStackError("store on empty stack")
			}
			ectx.Variables[in.Name] = v

		case bytecode.OpLoad:
			v, ok := ectx.Variables[in.Name]
			if !ok {
				ectx.Push(value.Null{})
			} else {
				ectx.Push(v)
			}

		case bytecode.OpCallBuiltin:
			args, err := popN(ectx, in.ArgCount)
			if err != nil {
				return err
			}
			v, err := callBuiltin(in.FuncName, args)
			if err != nil {
				return corinterr.NewInvalidOperation(err.Error())
			}
			ectx.Push(v)

		default:
			return corinterr.NewExecutionError("unknown opcode", map[string]interface{}{"op": in.Op.String()})
		}

		if next < 0 || next > prog.Len() {
			return corinterr.NewExecutionError("jump target out of bounds", map[string]interface{}{"pc": pc, "target": next})
		}
		pc = next
	}
	return nil
}

// popTwo pops the right-then-left operand pair BinaryOp/Compare/Swap
// expect, in source order (left was pushed first).
func popTwo(ectx *value.Context) (right, left value.Value, err error) {
	r, ok := ectx.Pop()
	if !ok {
		return nil, nil, corinterr.NewStackError("binary op on empty stack")
	}
	l, ok := ectx.Pop()
	if !ok {
		return nil, nil, corinterr.NewStackError("binary op on empty stack")
	}
	return r, l, nil
}

// popN pops n values and returns them in original push (argument) order.
func popN(ectx *value.Context, n int) ([]value.Value, error) {
	if n == 0 {
		return nil, nil
	}
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, ok := ectx.Pop()
		if !ok {
			return nil, corinterr.NewStackError("builtin call on empty stack")
		}
		out[i] = v
	}
	return out, nil
}

func (m *Machine) callRuleset(ctx context.Context, ectx *value.Context, rulesetID string) error {
	if m.Rulesets == nil {
		return corinterr.NewExecutionError("no ruleset registry configured", map[string]interface{}{"ruleset_id": rulesetID})
	}
	prog, ok := m.Rulesets.Ruleset(rulesetID)
	if !ok {
		return corinterr.NewExecutionError("unknown ruleset", map[string]interface{}{"ruleset_id": rulesetID})
	}

	saved := ectx.Stack
	ectx.Stack = nil
	err := m.Execute(ctx, prog, ectx)
	ectx.Stack = saved
	return err
}
