package llmprovider

import (
	"context"
	"strings"

	"github.com/corintai/corint/internal/vm"
)

// MockProvider is a deterministic, hash-free stand-in for a real LLM
// integration: it classifies a prompt by simple keyword match so tests can
// exercise CallLLM's signal-setting and fallback paths without any live
// network dependency, mirroring the teacher's mock_plugin_test.go pattern
// of a hand-rolled fake implementing the production interface.
type MockProvider struct {
	// Thinking, when true, makes SupportsThinking report true.
	Thinking bool

	// Responses maps a prompt substring (case-insensitive) to the verdict
	// it should produce; the first match in insertion order wins. A
	// prompt matching nothing falls back to "approve".
	Responses []MockResponse
}

// MockResponse is one (substring, verdict) rule MockProvider checks in
// order.
type MockResponse struct {
	Contains string
	Signal   string
	Reason   string
}

var _ Provider = (*MockProvider)(nil)

// Infer implements vm.LLMProvider.
func (p *MockProvider) Infer(ctx context.Context, req vm.LLMRequest) (vm.LLMResponse, error) {
	if err := ctx.Err(); err != nil {
		return vm.LLMResponse{}, err
	}
	lower := strings.ToLower(req.Prompt)
	for _, r := range p.Responses {
		if strings.Contains(lower, strings.ToLower(r.Contains)) {
			return vm.LLMResponse{Signal: r.Signal, Reason: r.Reason}, nil
		}
	}
	return vm.LLMResponse{Signal: "approve", Reason: "no matching rule; default approve"}, nil
}

// SupportsThinking implements Provider.
func (p *MockProvider) SupportsThinking() bool { return p.Thinking }

// Think implements ThinkingCapable: the mock ignores effort and just calls
// Infer, annotating the reason so tests can assert the thinking path was
// actually taken.
func (p *MockProvider) Think(ctx context.Context, req vm.LLMRequest, effort string) (vm.LLMResponse, error) {
	resp, err := p.Infer(ctx, req)
	if err != nil {
		return vm.LLMResponse{}, err
	}
	resp.Reason = "[" + effort + "] " + resp.Reason
	return resp, nil
}
