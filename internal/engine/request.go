package engine

import (
	"context"
	"fmt"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/result"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/internal/vm"
	"github.com/corintai/corint/pkg/corinterr"
)

// Decide runs one event through registry dispatch and, if a pipeline is
// selected, the VM: the request-time entry point the rest of the engine
// package exists to support. requestID identifies the decision for
// correlation in logs and traces; exposeVars names the variables (set via
// `vars.x = ...` in an authored pipeline) the caller wants surfaced on the
// returned DecisionResult.Context.
func Decide(ctx context.Context, machine *vm.Machine, table *ProgramTable, reg ast.Registry, requestID string, event value.Value, exposeVars []string) (*result.DecisionResult, error) {
	if bad := value.ValidateReservedNames(event); len(bad) > 0 {
		return nil, corinterr.NewReservedField(bad[0])
	}

	pipelineID, err := SelectPipeline(reg, event)
	switch {
	case err == nil:
		// fall through to pipeline execution below
	case isApprovedWithoutPipeline(err):
		return &result.DecisionResult{
			RequestID: requestID,
			Signal:    ast.SignalApprove.String(),
			Context:   map[string]interface{}{},
		}, nil
	case isNoMatchingPipeline(err):
		return &result.DecisionResult{
			RequestID: requestID,
			Signal:    ast.SignalDeny.String(),
			Context:   map[string]interface{}{},
		}, nil
	default:
		return nil, err
	}

	prog, ok := table.Pipeline(pipelineID)
	if !ok {
		return nil, corinterr.NewExecutionError("unknown pipeline selected by registry", map[string]interface{}{
			"pipeline_id": pipelineID,
		})
	}

	ectx := value.NewContext(event)
	runErr := machine.Execute(ctx, prog, ectx)

	dr := result.FromContext(requestID, pipelineID, ectx, exposeVars)
	if runErr != nil {
		return dr.WithError(fmt.Errorf("engine: execute pipeline %q: %w", pipelineID, runErr)), runErr
	}
	return dr, nil
}

func isApprovedWithoutPipeline(err error) bool {
	_, ok := err.(ApprovedWithoutPipeline)
	return ok
}

func isNoMatchingPipeline(err error) bool {
	_, ok := err.(ErrNoMatchingPipeline)
	return ok
}
