// Package llmprovider defines the opaque LLM provider contract backing
// CallLLM (vm.LLMProvider) and a deterministic mock implementation for
// tests. No live LLM SDK is wired: provider integrations are explicitly
// out of scope beyond this contract.
package llmprovider

import (
	"context"

	"github.com/corintai/corint/internal/vm"
)

// Provider is the contract a concrete LLM integration implements. It is
// deliberately narrower than vm.LLMProvider's Infer signature in spirit
// but wider in practice: Infer maps directly onto CallLLM's operands,
// while Provider additionally exposes the capability probe a caller needs
// before asking for an extended-reasoning ("thinking") pass.
type Provider interface {
	vm.LLMProvider

	// SupportsThinking reports whether this provider accepts an extended-
	// reasoning mode. Optional by convention: callers type-assert for it
	// rather than requiring every Provider to implement it meaningfully,
	// mirroring the teacher's MetadataProvider/PluginInitializer pattern of
	// capability interfaces a concrete type opts into.
	SupportsThinking() bool
}

// ThinkingCapable is implemented by providers whose SupportsThinking
// returns true; CallLLM's caller can type-assert for it to pass through a
// reasoning-effort hint without widening the base Provider contract.
type ThinkingCapable interface {
	Think(ctx context.Context, req vm.LLMRequest, effort string) (vm.LLMResponse, error)
}
