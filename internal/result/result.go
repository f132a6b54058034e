// Package result builds the request-facing DecisionResult (§4.6) from a
// completed value.Context, and the opt-in ExecutionTrace recorder the VM
// feeds through the vm.Tracer interface.
package result

import (
	"strings"

	"github.com/corintai/corint/internal/value"
)

// DecisionResult is the caller-facing outcome of running a pipeline or
// ruleset against one event.
type DecisionResult struct {
	RequestID      string
	PipelineID     string
	Score          int
	Signal         string
	Actions        []string
	TriggeredRules []string
	Explanation    string
	Context        map[string]interface{}

	// Err is set when the decision terminated on a request-time-fatal
	// error (§7); callers must check it before trusting the other fields.
	Err error
}

// FromContext builds a DecisionResult from a completed execution context.
// TriggeredRules is deduplicated while preserving first-firing order,
// since a rule re-entered through nested CallRuleset invocations is
// recorded once per firing in the accumulator but should appear once in
// the caller-facing result.
func FromContext(requestID, pipelineID string, ectx *value.Context, exposeVars []string) *DecisionResult {
	r := &DecisionResult{
		RequestID:      requestID,
		PipelineID:     pipelineID,
		Score:          int(ectx.Result.TotalScore),
		Signal:         ectx.Result.Signal,
		TriggeredRules: dedupe(ectx.Result.TriggeredRules),
		Explanation:    strings.Join(ectx.Result.Explanation, "; "),
		Context:        make(map[string]interface{}, len(exposeVars)),
	}
	if ectx.Result.Action != "" {
		r.Actions = []string{ectx.Result.Action}
	}
	for _, name := range exposeVars {
		if v, ok := ectx.Variables[name]; ok {
			r.Context[name] = value.ToNative(v)
		}
	}
	return r
}

// WithError returns a copy of r recording a request-time-fatal error; per
// §7 a fatal error "produces an error result without a signal."
func (r *DecisionResult) WithError(err error) *DecisionResult {
	clone := *r
	clone.Err = err
	clone.Signal = ""
	return &clone
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
