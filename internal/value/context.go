package value

// Context is the per-event execution context threaded through a Program
// run: the event namespace plus collaborator namespaces populated lazily
// as the VM resolves CallFeature/CallService/CallExternal/CallLLM, the
// operand stack, local variables bound by Store/Load, and the Result
// accumulator the VM mutates as rules fire.
type Context struct {
	// Namespaces holds top-level dotted-path roots: "event", "features",
	// "api", "service", "llm", "vars", "user". NewContext populates only
	// "event"; the VM's collaborator calls push their results onto the
	// operand stack and do not write here, and LoadField roots a path whose
	// namespace is absent from this map in "event".
	Namespaces map[string]Value

	// Stack is the VM's operand stack.
	Stack []Value

	// Variables holds named bindings created by OpStore and read by
	// OpLoad, scoped to a single Program execution.
	Variables map[string]Value

	// Result accumulates the decision as rules and pipeline steps execute.
	Result *Result
}

// NewContext builds a Context over the given event payload. event must
// already have passed reserved-name validation (see ValidateReservedNames).
func NewContext(event Value) *Context {
	return &Context{
		Namespaces: map[string]Value{"event": event},
		Stack:      make([]Value, 0, 16),
		Variables:  make(map[string]Value),
		Result:     NewResult(),
	}
}

// Push appends a value to the operand stack.
func (c *Context) Push(v Value) {
	c.Stack = append(c.Stack, v)
}

// Pop removes and returns the top of the operand stack. The second return
// value is false on an empty stack; callers translate that into a
// CodeStackError.
func (c *Context) Pop() (Value, bool) {
	n := len(c.Stack)
	if n == 0 {
		return nil, false
	}
	v := c.Stack[n-1]
	c.Stack = c.Stack[:n-1]
	return v, true
}

// Peek returns the top of the operand stack without removing it.
func (c *Context) Peek() (Value, bool) {
	n := len(c.Stack)
	if n == 0 {
		return nil, false
	}
	return c.Stack[n-1], true
}

// Result is the mutable decision-in-progress: total score, the rules and
// steps that fired, the resolved signal/action, and an optional
// human-readable explanation trail. Triggered IDs are kept in both a set
// (for O(1) membership during OpMarkRuleTriggered) and a slice (to
// preserve firing order for the final decision and trace).
type Result struct {
	TotalScore      float64
	TriggeredRules  []string
	triggeredSet    map[string]bool
	ExecutedSteps   []string
	Action          string
	Signal          string
	signalSet       bool
	Explanation     []string
}

// NewResult returns a zero-value decision accumulator.
func NewResult() *Result {
	return &Result{
		TriggeredRules: make([]string, 0, 4),
		triggeredSet:   make(map[string]bool),
		ExecutedSteps:  make([]string, 0, 4),
	}
}

// AddScore adds delta to the running total score (OpAddScore).
func (r *Result) AddScore(delta float64) { r.TotalScore += delta }

// SetScore overwrites the running total score (OpSetScore).
func (r *Result) SetScore(score float64) { r.TotalScore = score }

// MarkRuleTriggered records a rule as having fired. Duplicate marks (a
// rule re-entered via CallRuleset) are idempotent with respect to the set
// but still accumulate in firing order for the trace.
func (r *Result) MarkRuleTriggered(ruleID string) {
	r.triggeredSet[ruleID] = true
	r.TriggeredRules = append(r.TriggeredRules, ruleID)
}

// RuleTriggered reports whether ruleID has already fired in this run.
func (r *Result) RuleTriggered(ruleID string) bool { return r.triggeredSet[ruleID] }

// MarkStepExecuted records a pipeline step as executed, for the trace.
func (r *Result) MarkStepExecuted(stepID string) {
	r.ExecutedSteps = append(r.ExecutedSteps, stepID)
}

// SetSignal resolves the decision's signal by most-recent-wins: each call
// overwrites the previous signal, so the last SetSignal executed across
// every rule/ruleset/conclusion branch in the run determines the final
// value. A ruleset's `terminate: true` branch additionally emits Return so
// no later ruleset's SetSignal can override it.
func (r *Result) SetSignal(signal string) {
	r.Signal = signal
	r.signalSet = true
}

// HasSignal reports whether any rule has set a signal yet.
func (r *Result) HasSignal() bool { return r.signalSet }

// SetAction overwrites the decision's action.
func (r *Result) SetAction(action string) { r.Action = action }

// Explain appends a human-readable trace line.
func (r *Result) Explain(line string) {
	r.Explanation = append(r.Explanation, line)
}
