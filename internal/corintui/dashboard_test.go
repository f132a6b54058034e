package corintui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/bytecode"
	"github.com/corintai/corint/internal/engine"
)

type fakeReloadService struct {
	build *engine.Build
	err   error
}

func (f *fakeReloadService) Reload() (*engine.Build, error) { return f.build, f.err }

func TestDashboardReloadDoneUpdatesState(t *testing.T) {
	t.Parallel()

	build := &engine.Build{
		Programs:  map[string]*bytecode.Program{"rule_a": {}},
		Pipelines: map[string]*bytecode.Program{"pipe_a": {}},
		Registry: ast.Registry{
			Entries: []ast.RegistryEntry{
				{When: ast.WhenBlock{EventType: "payment"}, PipelineID: "pipe_a"},
			},
			DefaultReject: true,
		},
	}

	m := NewModel(&fakeReloadService{build: build}, time.Second)
	updated, _ := m.Update(reloadDoneMsg{build: build, at: time.Now()})
	model := updated.(Model)

	require.False(t, model.reloading)
	require.Nil(t, model.lastErr)
	require.Same(t, build, model.lastBuild)

	view := model.View()
	require.Contains(t, view, "event.type == payment")
	require.Contains(t, view, "pipe_a")
	require.Contains(t, view, "default -> reject")
}

func TestDashboardReloadErrorIsShown(t *testing.T) {
	t.Parallel()

	m := NewModel(&fakeReloadService{}, time.Second)
	updated, _ := m.Update(reloadDoneMsg{err: require.AnError, at: time.Now()})
	model := updated.(Model)

	require.Equal(t, require.AnError, model.lastErr)
	require.Contains(t, model.View(), "reload failed")
}

func TestDashboardQuitKeySendsQuitCmd(t *testing.T) {
	t.Parallel()

	m := NewModel(&fakeReloadService{}, time.Second)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
}

func TestRenderOnceRendersWithoutTheEventLoop(t *testing.T) {
	t.Parallel()

	build := &engine.Build{
		Programs:  map[string]*bytecode.Program{"rule_a": {}},
		Pipelines: map[string]*bytecode.Program{"pipe_a": {}},
		Registry:  ast.Registry{DefaultPipelineID: "pipe_a"},
	}

	view, err := RenderOnce(&fakeReloadService{build: build})
	require.NoError(t, err)
	require.Contains(t, view, "pipelines compiled:      1")
	require.Contains(t, view, "default -> pipe_a")
}

func TestRenderOnceSurfacesReloadError(t *testing.T) {
	t.Parallel()

	_, err := RenderOnce(&fakeReloadService{err: require.AnError})
	require.Equal(t, require.AnError, err)
}
