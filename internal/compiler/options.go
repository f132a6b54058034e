package compiler

import (
	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
)

// Options selects the opt-in optimization passes of §4.4.5. Neither pass
// alters observable semantics; both default to off so a first compile of
// an artifact produces the literal, easy-to-trace lowering.
type Options struct {
	FoldConstants     bool
	EliminateDeadCode bool
}

// Compile lowers a single AST artifact (Rule, Ruleset, or Pipeline) to a
// Program, applying whichever optimizations opts selects.
func Compile(doc interface{}, opts Options) (*bytecode.Program, error) {
	switch v := doc.(type) {
	case ast.Rule:
		if opts.FoldConstants {
			v.When = foldWhen(v.When)
		}
		prog, err := CompileRule(v)
		return finish(prog, err, opts)

	case ast.Ruleset:
		if opts.FoldConstants {
			v = foldRuleset(v)
		}
		prog, err := CompileRuleset(v)
		return finish(prog, err, opts)

	case ast.Pipeline:
		if opts.FoldConstants {
			v = foldPipeline(v)
		}
		prog, err := CompilePipeline(v)
		return finish(prog, err, opts)

	default:
		return nil, errUnsupportedArtifact(v)
	}
}

func finish(prog *bytecode.Program, err error, opts Options) (*bytecode.Program, error) {
	if err != nil {
		return nil, err
	}
	if opts.EliminateDeadCode {
		prog.Instructions = EliminateDeadCode(prog.Instructions)
	}
	return prog, nil
}

func foldWhen(w ast.WhenBlock) ast.WhenBlock {
	if w.ConditionGroup != nil {
		folded := FoldCondition(ast.Condition{Group: w.ConditionGroup})
		w.ConditionGroup = folded.Group
		return w
	}
	for i, c := range w.Conditions {
		w.Conditions[i] = FoldCondition(c)
	}
	return w
}

func foldRuleset(rs ast.Ruleset) ast.Ruleset {
	for i, branch := range rs.Conclusion {
		if !branch.Default {
			rs.Conclusion[i].Condition = FoldCondition(branch.Condition)
		}
	}
	return rs
}

func foldPipeline(p ast.Pipeline) ast.Pipeline {
	if p.When != nil {
		folded := foldWhen(*p.When)
		p.When = &folded
	}
	for i, s := range p.Steps {
		if s.Guard != nil {
			folded := foldWhen(*s.Guard)
			p.Steps[i].Guard = &folded
		}
		for j, r := range s.Routes {
			p.Steps[i].Routes[j].When = foldWhen(r.When)
		}
	}
	return p
}

func errUnsupportedArtifact(v interface{}) error {
	return &unsupportedArtifactError{v}
}

type unsupportedArtifactError struct{ v interface{} }

func (e *unsupportedArtifactError) Error() string {
	return "compiler: unsupported artifact type for Compile"
}
