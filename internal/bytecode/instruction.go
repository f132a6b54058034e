// Package bytecode defines the flat instruction set and Program container
// the compiler (C6) emits and the VM (C7) interprets.
package bytecode

import "github.com/corintai/corint/internal/value"

// Op identifies an instruction's operation.
type Op int

const (
	OpLoadField Op = iota
	OpLoadConst
	OpBinaryOp
	OpCompare
	OpUnaryOp
	OpJump
	OpJumpIfTrue
	OpJumpIfFalse
	OpReturn
	OpCheckEventType
	OpSetScore
	OpAddScore
	OpSetAction
	OpSetSignal
	OpMarkRuleTriggered
	OpMarkStepExecuted
	OpCallRuleset
	OpCallFeature
	OpCallService
	OpCallExternal
	OpCallLLM
	OpDup
	OpPop
	OpSwap
	OpStore
	OpLoad
	OpCallBuiltin
)

var opNames = [...]string{
	"LoadField", "LoadConst", "BinaryOp", "Compare", "UnaryOp",
	"Jump", "JumpIfTrue", "JumpIfFalse", "Return", "CheckEventType",
	"SetScore", "AddScore", "SetAction", "SetSignal", "MarkRuleTriggered",
	"MarkStepExecuted", "CallRuleset", "CallFeature", "CallService",
	"CallExternal", "CallLLM", "Dup", "Pop", "Swap", "Store", "Load",
	"CallBuiltin",
}

func (op Op) String() string {
	if int(op) < 0 || int(op) >= len(opNames) {
		return "Unknown"
	}
	return opNames[op]
}

// TimeWindow enumerates the CallFeature time-window kinds.
type TimeWindow int

const (
	WindowLast1Hour TimeWindow = iota
	WindowLast24Hours
	WindowLast7Days
	WindowLast30Days
	WindowCustom
)

// FeatureType enumerates the CallFeature statistic kinds.
type FeatureType int

const (
	FeatureCount FeatureType = iota
	FeatureCountDistinct
	FeatureSum
	FeatureAvg
	FeatureMin
	FeatureMax
	FeaturePercentile
	FeatureStdDev
	FeatureVariance
)

// Instruction is a single bytecode operation. It is represented as one
// flat struct with a superset of operand fields rather than one Go type
// per opcode: Op selects which fields are meaningful, mirroring how the
// VM's dispatch loop and the trace recorder both need uniform access to
// "the next instruction" regardless of kind.
type Instruction struct {
	Op Op

	// LoadField / Store / Load
	Path []string
	Name string

	// LoadConst
	Const value.Value

	// BinaryOp / Compare / UnaryOp — reuses ast.Operator / ast.UnaryOperator
	// numeric encodings without importing ast, to keep bytecode free of
	// authoring-time types; the compiler translates at lowering time.
	BinOp int
	UnOp  int

	// Jump / JumpIfTrue / JumpIfFalse — relative offset from this
	// instruction's own index (see Program doc on offset convention).
	Offset int

	// CheckEventType
	Expected string

	// SetScore / AddScore
	Score float64

	// SetAction / SetSignal
	Action string
	Signal string

	// MarkRuleTriggered / CallRuleset
	RuleID string

	// MarkStepExecuted
	StepID         string
	NextStepID     string
	RouteIndex     int
	IsDefaultRoute bool

	// CallFeature
	FeatureType   FeatureType
	FilterExpr    string
	TimeWindow    TimeWindow
	WindowSeconds int
	Percentile    float64

	// CallService / CallExternal
	Svc       string
	API       string
	Endpoint  string
	Params    map[string]value.Value
	TimeoutMS int
	Fallback  value.Value
	HasFallback bool

	// CallLLM
	Provider string
	Model    string
	Prompt   string

	// CallBuiltin — pops ArgCount values (in argument order) and pushes the
	// result of applying the named builtin (abs, len, lower, upper, round).
	// This opcode is an implementation extension beyond the spec's literal
	// instruction table, added to give FunctionCall expressions somewhere
	// to lower to; see DESIGN.md.
	FuncName string
	ArgCount int
}
