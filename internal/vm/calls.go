package vm

import (
	"context"

	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/pkg/corinterr"
)

// callFeature dispatches CallFeature. Without a backing store it returns
// 0, the documented behavior (§4.5); a recoverable feature-store error
// falls back to 0 as well, matching the "backward-compat mode" described
// in §7 (strict mode is left to a future FeatureExtractor that chooses to
// return a non-recoverable error instead).
func (m *Machine) callFeature(ctx context.Context, ectx *value.Context, in bytecode.Instruction) error {
	if m.Features == nil {
		ectx.Push(value.Number(0))
		return nil
	}
	v, err := m.Features.Extract(ctx, FeatureRequest{
		Type:          in.FeatureType,
		FieldPath:     in.Path,
		FilterExpr:    in.FilterExpr,
		Window:        in.TimeWindow,
		WindowSeconds: in.WindowSeconds,
		Percentile:    in.Percentile,
	})
	if err != nil {
		if corinterr.IsRecoverable(err) {
			ectx.Push(value.Number(0))
			return nil
		}
		return err
	}
	ectx.Push(v)
	return nil
}

// callService dispatches CallService: identical contract to CallExternal
// without crossing an HTTP boundary.
func (m *Machine) callService(ctx context.Context, ectx *value.Context, in bytecode.Instruction) error {
	if m.Services == nil {
		return pushFallbackOrFail(ectx, in, corinterr.NewExternalCallFailed(in.Svc, nil))
	}
	v, err := m.Services.CallService(ctx, ServiceRequest{Service: in.Svc, Op: in.Endpoint, Params: in.Params})
	if err != nil {
		return pushFallbackOrFail(ectx, in, corinterr.NewExternalCallFailed(in.Svc, err))
	}
	ectx.Push(v)
	return nil
}

// callExternal dispatches CallExternal. On failure, the configured
// fallback Value is pushed if present; otherwise ExternalCallFailed
// surfaces as a request-time-recoverable error (§7).
func (m *Machine) callExternal(ctx context.Context, ectx *value.Context, in bytecode.Instruction) error {
	if m.External == nil {
		return pushFallbackOrFail(ectx, in, corinterr.NewExternalCallFailed(in.API, nil))
	}
	v, err := m.External.CallExternal(ctx, ExternalRequest{
		API: in.API, Endpoint: in.Endpoint, Params: in.Params, TimeoutMS: in.TimeoutMS,
	})
	if err != nil {
		return pushFallbackOrFail(ectx, in, corinterr.NewExternalCallFailed(in.API, err))
	}
	ectx.Push(v)
	return nil
}

func pushFallbackOrFail(ectx *value.Context, in bytecode.Instruction, callErr error) error {
	if in.HasFallback {
		ectx.Push(in.Fallback)
		return nil
	}
	return callErr
}

// callLLM dispatches CallLLM and maps the provider's response onto the
// decision's signal, honoring most-recent-wins precedence the same as any
// other SetSignal instruction.
func (m *Machine) callLLM(ctx context.Context, ectx *value.Context, in bytecode.Instruction) error {
	if m.LLM == nil {
		return corinterr.NewLLMProviderUnavailable(in.Provider, nil)
	}
	resp, err := m.LLM.Infer(ctx, LLMRequest{Provider: in.Provider, Model: in.Model, Prompt: in.Prompt})
	if err != nil {
		return corinterr.NewLLMProviderUnavailable(in.Provider, err)
	}
	ectx.Result.SetSignal(resp.Signal)
	if resp.Reason != "" {
		ectx.Result.Explain(resp.Reason)
	}
	return nil
}
