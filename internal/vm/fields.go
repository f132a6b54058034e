package vm

import (
	"context"

	"github.com/corintai/corint/internal/value"
)

// namespaceKeys are the seven authored namespaces LoadField recognizes
// before falling back to rooting an unqualified path in "event".
var namespaceKeys = map[string]bool{
	"event": true, "features": true, "api": true,
	"service": true, "llm": true, "vars": true, "user": true,
}

// loadField resolves a dotted path per §4.5: a recognized namespace that
// is present in the context descends into that namespace; "lists" and
// "result" are the compiler's pseudo-namespace extension (see DESIGN.md)
// for ListReference/ResultAccess; anything else, including a recognized
// namespace absent from the context, is rooted in "event". Missing keys
// at any depth yield Null rather than an error.
func (m *Machine) loadField(ctx context.Context, ectx *value.Context, path []string) (value.Value, error) {
	if len(path) == 0 {
		return value.Null{}, nil
	}

	switch path[0] {
	case "lists":
		return m.resolveList(path[1:])
	case "result":
		return resolveResult(ectx, path[1:]), nil
	}

	if namespaceKeys[path[0]] {
		if ns, ok := ectx.Namespaces[path[0]]; ok {
			return resolveNested(ns, path[1:]), nil
		}
	}

	ns, ok := ectx.Namespaces["event"]
	if !ok {
		return value.Null{}, nil
	}
	return resolveNested(ns, path), nil
}

// resolveNested walks further path segments through nested Objects,
// yielding Null as soon as any segment is missing or the value in hand
// isn't an Object.
func resolveNested(v value.Value, path []string) value.Value {
	for _, seg := range path {
		obj, ok := v.(value.Object)
		if !ok {
			return value.Null{}
		}
		next, ok := obj[seg]
		if !ok {
			return value.Null{}
		}
		v = next
	}
	return v
}

func (m *Machine) resolveList(path []string) (value.Value, error) {
	if len(path) == 0 || m.Lists == nil {
		return value.Null{}, nil
	}
	return m.Lists.Resolve(path[0])
}

// resolveResult reads back into the in-progress decision accumulator.
// path is either ["field"] (whole-decision) or ["rulesetID", "field"];
// per-ruleset scoping is not tracked separately by the shared Result
// accumulator (score and triggered rules are global across CallRuleset
// invocations — see §4.5), so a ruleset-scoped ResultAccess currently
// resolves against the same whole-decision view as the unscoped form.
func resolveResult(ectx *value.Context, path []string) value.Value {
	field := ""
	switch len(path) {
	case 1:
		field = path[0]
	case 2:
		field = path[1]
	default:
		return value.Null{}
	}

	switch field {
	case "total_score", "score":
		return value.Number(ectx.Result.TotalScore)
	case "triggered_count":
		return value.Number(float64(len(ectx.Result.TriggeredRules)))
	case "triggered_rules":
		arr := make(value.Array, len(ectx.Result.TriggeredRules))
		for i, id := range ectx.Result.TriggeredRules {
			arr[i] = value.String(id)
		}
		return arr
	case "signal":
		return value.String(ectx.Result.Signal)
	case "action":
		return value.String(ectx.Result.Action)
	default:
		return value.Null{}
	}
}
