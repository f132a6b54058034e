package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/compiler"
	"github.com/corintai/corint/internal/parser"
	"github.com/corintai/corint/pkg/corinterr"
)

// newCompileCmd compiles a single rule/ruleset/pipeline YAML file in
// isolation (no import resolution: compile is for inspecting one
// artifact's lowered bytecode, not for running a repository's closure —
// that's run/trace's job) and prints a human-readable instruction dump.
func newCompileCmd(app *AppContext) *cobra.Command {
	var fold, dce bool

	cmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a rule, ruleset, or pipeline file and print its bytecode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("corint compile: read %s: %w", args[0], err)
			}

			docs, err := parser.ParseBytes(data)
			if err != nil {
				return fmt.Errorf("corint compile: parse %s: %w", args[0], err)
			}

			opts := compiler.Options{FoldConstants: fold, EliminateDeadCode: dce}
			out := cmd.OutOrStdout()

			compiled := 0
			for _, d := range docs {
				doc, ok := compilableDoc(d)
				if !ok {
					continue
				}
				prog, err := compiler.Compile(doc, opts)
				if err != nil {
					return fmt.Errorf("corint compile: %w", err)
				}
				printProgram(out, prog)
				compiled++
			}

			if compiled == 0 {
				return corinterr.NewInvalidValue("file contains no rule, ruleset, or pipeline document", map[string]interface{}{"path": args[0]})
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fold, "fold", false, "apply constant folding")
	cmd.Flags().BoolVar(&dce, "dce", false, "apply dead-code elimination")
	return cmd
}

func compilableDoc(d ast.Document) (interface{}, bool) {
	switch {
	case d.Rule != nil:
		return *d.Rule, true
	case d.Ruleset != nil:
		return *d.Ruleset, true
	case d.Pipeline != nil:
		return *d.Pipeline, true
	default:
		return nil, false
	}
}

func printProgram(out io.Writer, prog *bytecode.Program) {
	fmt.Fprintf(out, "; %s %q (%d instructions)\n", prog.SourceType, prog.SourceID, prog.Len())
	for i, in := range prog.Instructions {
		fmt.Fprintf(out, "%4d  %-18s %s\n", i, in.Op, operandSummary(in))
	}
	fmt.Fprintln(out)
}

func operandSummary(in bytecode.Instruction) string {
	switch in.Op {
	case bytecode.OpLoadField, bytecode.OpStore, bytecode.OpLoad:
		if in.Name != "" {
			return in.Name
		}
		return fmt.Sprintf("%v", in.Path)
	case bytecode.OpLoadConst:
		return in.Const.String()
	case bytecode.OpBinaryOp:
		return fmt.Sprintf("op=%d", in.BinOp)
	case bytecode.OpUnaryOp:
		return fmt.Sprintf("op=%d", in.UnOp)
	case bytecode.OpCompare:
		return fmt.Sprintf("op=%d", in.BinOp)
	case bytecode.OpJump, bytecode.OpJumpIfTrue, bytecode.OpJumpIfFalse:
		return fmt.Sprintf("offset=%+d", in.Offset)
	case bytecode.OpCheckEventType:
		return in.Expected
	case bytecode.OpSetScore, bytecode.OpAddScore:
		return fmt.Sprintf("%g", in.Score)
	case bytecode.OpSetAction:
		return in.Action
	case bytecode.OpSetSignal:
		return in.Signal
	case bytecode.OpMarkRuleTriggered, bytecode.OpCallRuleset:
		return in.RuleID
	case bytecode.OpMarkStepExecuted:
		return fmt.Sprintf("step=%s next=%s route=%d default=%t", in.StepID, in.NextStepID, in.RouteIndex, in.IsDefaultRoute)
	case bytecode.OpCallFeature:
		return fmt.Sprintf("type=%s field=%v window=%d", featureTypeLabel(in.FeatureType), in.Path, in.TimeWindow)
	case bytecode.OpCallService:
		return fmt.Sprintf("%s.%s", in.Svc, in.Endpoint)
	case bytecode.OpCallExternal:
		return fmt.Sprintf("%s/%s", in.API, in.Endpoint)
	case bytecode.OpCallLLM:
		return fmt.Sprintf("%s/%s", in.Provider, in.Model)
	case bytecode.OpCallBuiltin:
		return fmt.Sprintf("%s/%d", in.FuncName, in.ArgCount)
	default:
		return ""
	}
}

var featureTypeNames = [...]string{
	"count", "count_distinct", "sum", "avg", "min", "max", "percentile", "stddev", "variance",
}

func featureTypeLabel(t bytecode.FeatureType) string {
	if int(t) < 0 || int(t) >= len(featureTypeNames) {
		return "unknown"
	}
	return featureTypeNames[t]
}
