package llmprovider

import (
	"context"
	"testing"

	"github.com/corintai/corint/internal/vm"
	"github.com/stretchr/testify/require"
)

func TestMockProviderFirstMatchWins(t *testing.T) {
	t.Parallel()

	p := &MockProvider{Responses: []MockResponse{
		{Contains: "stolen card", Signal: "deny", Reason: "stolen card keyword"},
		{Contains: "card", Signal: "review", Reason: "generic card mention"},
	}}

	resp, err := p.Infer(context.Background(), vm.LLMRequest{Prompt: "customer reports a stolen card"})
	require.NoError(t, err)
	require.Equal(t, "deny", resp.Signal)
}

func TestMockProviderDefaultApprove(t *testing.T) {
	t.Parallel()

	p := &MockProvider{}
	resp, err := p.Infer(context.Background(), vm.LLMRequest{Prompt: "routine login"})
	require.NoError(t, err)
	require.Equal(t, "approve", resp.Signal)
}

func TestMockProviderThinkAnnotatesReason(t *testing.T) {
	t.Parallel()

	p := &MockProvider{Thinking: true, Responses: []MockResponse{{Contains: "fraud", Signal: "deny", Reason: "flagged"}}}
	require.True(t, p.SupportsThinking())

	resp, err := p.Think(context.Background(), vm.LLMRequest{Prompt: "possible fraud"}, "high")
	require.NoError(t, err)
	require.Equal(t, "deny", resp.Signal)
	require.Contains(t, resp.Reason, "[high]")
}
