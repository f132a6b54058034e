package externalapi

import (
	"context"
	"fmt"

	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/internal/vm"
	"github.com/corintai/corint/pkg/corinterr"
)

// ServiceHandler computes a CallService result for one (service, op) pair.
type ServiceHandler func(ctx context.Context, params map[string]value.Value) (value.Value, error)

// MockServiceAdapter is a deterministic in-memory vm.ServiceCaller, the
// internal-service analog of Client: handlers are registered by name ahead
// of time rather than dispatched over HTTP, mirroring the teacher's
// internal/plugin/mock_plugin_test.go pattern of a hand-rolled fake
// implementing the production interface for tests and for environments
// with no real internal-service mesh to call.
type MockServiceAdapter struct {
	handlers map[string]ServiceHandler
}

var _ vm.ServiceCaller = (*MockServiceAdapter)(nil)

// NewMockServiceAdapter returns an adapter with no handlers registered;
// an unregistered (service, op) pair surfaces ExternalCallFailed.
func NewMockServiceAdapter() *MockServiceAdapter {
	return &MockServiceAdapter{handlers: make(map[string]ServiceHandler)}
}

// Register associates a handler with a (service, op) pair.
func (m *MockServiceAdapter) Register(service, op string, h ServiceHandler) {
	m.handlers[key(service, op)] = h
}

// CallService implements vm.ServiceCaller.
func (m *MockServiceAdapter) CallService(ctx context.Context, req vm.ServiceRequest) (value.Value, error) {
	h, ok := m.handlers[key(req.Service, req.Op)]
	if !ok {
		return nil, corinterr.NewExternalCallFailed(req.Service, fmt.Errorf("unregistered service op: %s::%s", req.Service, req.Op))
	}
	return h(ctx, req.Params)
}

func key(service, op string) string { return service + "::" + op }
