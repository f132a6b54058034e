package ast

import (
	"fmt"
	"regexp"

	"github.com/corintai/corint/internal/value"
)

// EndStep is the reserved terminal target name usable in next/default/route
// targets without naming an actual step.
const EndStep = "end"

// stepIDPattern bounds step identifiers to the same conservative charset
// the teacher enforces on its own step ids.
var stepIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// StepType enumerates the pipeline step kinds named in the data model.
type StepType int

const (
	StepRouter StepType = iota
	StepRuleset
	StepFunction
	StepService
	StepAPI
	StepTrigger
	StepRule
	StepSubPipeline
	StepUnknown
)

var stepTypeNames = map[StepType]string{
	StepRouter:      "router",
	StepRuleset:     "ruleset",
	StepFunction:    "function",
	StepService:     "service",
	StepAPI:         "api",
	StepTrigger:     "trigger",
	StepRule:        "rule",
	StepSubPipeline: "subpipeline",
	StepUnknown:     "unknown",
}

func (t StepType) String() string { return stepTypeNames[t] }

// ParseStepType maps a YAML type string to a StepType. Unrecognized
// strings become StepUnknown rather than an error — per the open question
// in the design notes, unknown step types are accepted as no-ops at parse
// time, and the analyzer does not reject them either.
func ParseStepType(s string) StepType {
	for t, name := range stepTypeNames {
		if name == s {
			return t
		}
	}
	return StepUnknown
}

// Route is one router branch: a guard plus its target step id.
type Route struct {
	When WhenBlock
	Next string
}

// Step is a single pipeline vertex. RulesetRef/ServiceRef/APIRef/etc. hold
// the type-specific configuration; only the field matching Type is
// meaningful.
type Step struct {
	ID   string
	Name string
	Type StepType

	// Guard is the step-level `when`; the redesign decision documented in
	// DESIGN.md honors it (unlike the source, which treated it as a
	// no-op): when present, codegen emits a guard jump straight to Next.
	Guard *WhenBlock

	Routes  []Route
	Default string // router fallback step id
	Next    string // unconditional successor; routers must leave this empty (I4)

	RulesetID  string // StepRuleset
	ServiceRef *ServiceCallConfig
	APIRef     *APICallConfig

	Metadata map[string]interface{}
}

// ServiceCallConfig configures a StepService's CallService lowering.
type ServiceCallConfig struct {
	Service string
	Op      string
	Params  map[string]value.Value
	OutVar  string // defaults to "service.<Service>" when empty
}

// APICallConfig configures a StepAPI's CallExternal lowering.
type APICallConfig struct {
	API       string
	Endpoint  string
	Params    map[string]value.Value
	TimeoutMS int
	Fallback  value.Value
	OutVar    string // defaults to "api.<API>.<Endpoint>" when empty
}

// ValidID reports whether id matches the conservative step-identifier
// charset.
func ValidID(id string) bool { return id != "" && stepIDPattern.MatchString(id) }

// IsRouter reports whether this step is a router, for the I4 shape check.
func (s Step) IsRouter() bool { return s.Type == StepRouter }

// Pipeline is a named DAG of Steps rooted at Entry.
type Pipeline struct {
	ID          string
	Name        string
	Description string
	Entry       string
	When        *WhenBlock // optional pipeline-level guard
	Steps       []Step
	Metadata    map[string]interface{}

	SourcePath string
}

// StepByID returns the step with the given id, or false if absent. "end"
// never resolves to a step — callers must special-case it first.
func (p Pipeline) StepByID(id string) (Step, bool) {
	for _, s := range p.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// Targets returns every step id this step can transition to (Next,
// Default, and each route's Next), excluding the literal "end".
func (s Step) Targets() []string {
	var out []string
	if s.Next != "" && s.Next != EndStep {
		out = append(out, s.Next)
	}
	if s.Default != "" && s.Default != EndStep {
		out = append(out, s.Default)
	}
	for _, r := range s.Routes {
		if r.Next != "" && r.Next != EndStep {
			out = append(out, r.Next)
		}
	}
	return out
}

// DetectCycle performs a DFS from entry over step transitions and returns
// the first cycle found as a step-id path (invariant I3), or nil if the
// graph rooted at entry is acyclic. This mirrors the explicit
// visited/stack/path walk the teacher uses for its own dependency-cycle
// detection.
func (p Pipeline) DetectCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var detect func(id string) []string
	detect = func(id string) []string {
		if id == "" || id == EndStep {
			return nil
		}
		if onStack[id] {
			return append(append([]string{}, path...), id)
		}
		if visited[id] {
			return nil
		}
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		step, ok := p.StepByID(id)
		if ok {
			for _, target := range step.Targets() {
				if cycle := detect(target); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		onStack[id] = false
		return nil
	}

	return detect(p.Entry)
}

// ReachableFromEntry returns the set of step ids reachable from Entry,
// used by codegen to decide which steps to emit and by the analyzer for
// W001 unreachable-step warnings.
func (p Pipeline) ReachableFromEntry() map[string]bool {
	seen := make(map[string]bool)
	var walk func(id string)
	walk = func(id string) {
		if id == "" || id == EndStep || seen[id] {
			return
		}
		seen[id] = true
		step, ok := p.StepByID(id)
		if !ok {
			return
		}
		for _, target := range step.Targets() {
			walk(target)
		}
	}
	walk(p.Entry)
	return seen
}

func (p Pipeline) String() string {
	return fmt.Sprintf("Pipeline{id=%s, entry=%s, steps=%d}", p.ID, p.Entry, len(p.Steps))
}
