// Package vm implements the bytecode interpreter (C7): the execution
// loop, namespace field resolution, and dispatch to the collaborator
// contracts CallFeature/CallService/CallExternal/CallLLM/CallRuleset name.
// Collaborators are open extension points (§6) — concrete implementations
// live in internal/feature, internal/externalapi, and internal/llmprovider;
// this package only depends on their interfaces, mirroring the teacher's
// own ports-style seam between its engine and its plugin registry.
package vm

import (
	"context"

	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/value"
)

// RulesetPrograms resolves a compiled ruleset id to its Program, backing
// CallRuleset. The concrete implementation is the engine's compiled-
// program table (§5): read-only during request execution, swapped
// atomically on reload.
type RulesetPrograms interface {
	Ruleset(id string) (*bytecode.Program, bool)
}

// FeatureExtractor backs CallFeature. Implementations query an
// event-history collaborator and fold the named statistic over whatever
// records match filterExpr within the window; see internal/feature.
type FeatureExtractor interface {
	Extract(ctx context.Context, req FeatureRequest) (value.Value, error)
}

// FeatureRequest carries CallFeature's operands.
type FeatureRequest struct {
	Type          bytecode.FeatureType
	FieldPath     []string
	FilterExpr    string
	Window        bytecode.TimeWindow
	WindowSeconds int
	Percentile    float64
}

// ExternalCaller backs CallExternal: a templated HTTP call against an
// api-configuration entry.
type ExternalCaller interface {
	CallExternal(ctx context.Context, req ExternalRequest) (value.Value, error)
}

// ExternalRequest carries CallExternal's operands.
type ExternalRequest struct {
	API       string
	Endpoint  string
	Params    map[string]value.Value
	TimeoutMS int
}

// ServiceCaller backs CallService: an internal-service adapter invoked the
// same way as CallExternal but without crossing an HTTP boundary.
type ServiceCaller interface {
	CallService(ctx context.Context, req ServiceRequest) (value.Value, error)
}

// ServiceRequest carries CallService's operands.
type ServiceRequest struct {
	Service string
	Op      string
	Params  map[string]value.Value
}

// LLMProvider backs CallLLM: an opaque pluggable call that may run in an
// extended-reasoning ("thinking") mode.
type LLMProvider interface {
	Infer(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// LLMRequest carries CallLLM's operands.
type LLMRequest struct {
	Provider string
	Model    string
	Prompt   string
}

// LLMResponse is the provider's verdict, mapped onto the decision's signal.
type LLMResponse struct {
	Signal string
	Reason string
}

// ListBackend resolves a named list (e.g. a blocklist) for ListReference
// expressions lowered through OpLoadField's "lists" pseudo-namespace.
type ListBackend interface {
	Resolve(listID string) (value.Value, error)
}
