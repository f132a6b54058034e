package result

import "time"

// StepTrace records one pipeline step's execution for an opt-in
// ExecutionTrace (§4.6).
type StepTrace struct {
	StepID        string
	NextStepID    string
	RouteIndex    int
	IsDefault     bool
	RulesetTraces []RuleTrace
	DurationMS    float64
}

// RuleTrace records one rule's outcome within a ruleset invocation.
type RuleTrace struct {
	RuleID     string
	Triggered  bool
	ScoreDelta float64
}

// ExecutionTrace is the opt-in per-request trace §4.6 describes: ordered
// step records plus nested ruleset/rule outcomes.
type ExecutionTrace struct {
	Steps []StepTrace
}

// Recorder implements vm.Tracer, timestamping each step as it starts so
// StepExecuted can compute elapsed time. It is not safe for concurrent
// use by multiple in-flight decisions — each decision gets its own
// Recorder, mirroring the VM's own per-decision operand stack and
// variable map (§5: "never shared across tasks").
type Recorder struct {
	trace     ExecutionTrace
	stepStart time.Time
	pending   *StepTrace
}

// NewRecorder returns a Recorder ready to receive a single decision's
// trace events.
func NewRecorder() *Recorder {
	return &Recorder{stepStart: time.Now()}
}

// StepExecuted closes out any previously open step (stamping its elapsed
// duration) and opens a new one.
func (r *Recorder) StepExecuted(stepID, nextStepID string, routeIndex int, isDefault bool) {
	r.closePending()
	now := time.Now()
	st := StepTrace{StepID: stepID, NextStepID: nextStepID, RouteIndex: routeIndex, IsDefault: isDefault}
	r.pending = &st
	r.stepStart = now
}

// RuleTriggered attaches a rule outcome to whichever step is currently
// open (a ruleset invocation happens inside a single pipeline step).
func (r *Recorder) RuleTriggered(ruleID string, scoreDelta float64) {
	if r.pending == nil {
		return
	}
	r.pending.RulesetTraces = append(r.pending.RulesetTraces, RuleTrace{RuleID: ruleID, Triggered: true, ScoreDelta: scoreDelta})
}

func (r *Recorder) closePending() {
	if r.pending == nil {
		return
	}
	r.pending.DurationMS = float64(time.Since(r.stepStart).Microseconds()) / 1000.0
	r.trace.Steps = append(r.trace.Steps, *r.pending)
	r.pending = nil
}

// Finish closes any still-open step and returns the completed trace.
func (r *Recorder) Finish() ExecutionTrace {
	r.closePending()
	return r.trace
}
