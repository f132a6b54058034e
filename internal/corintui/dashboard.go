// Package corintui implements the live-reload dashboard cmd/corint's
// dashboard subcommand drives: a bubbletea Model that periodically
// rebuilds the compiled program table from a repository and renders the
// registry's current dispatch table, grounded on the teacher's
// internal/tui/dashboard Model/Update/View split (spinner-driven refresh,
// tea.Tick-scheduled polling) but built fresh against CORINT's own
// engine.Build rather than the teacher's registry.Pipeline/StatusCache
// domain types.
package corintui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/corintai/corint/internal/engine"
	"github.com/corintai/corint/internal/repository"
)

// ReloadService abstracts the repository-to-compiled-table pipeline the
// dashboard drives, so tests can substitute a fake without touching disk.
type ReloadService interface {
	Reload() (*engine.Build, error)
}

type repositoryReloadService struct {
	repo repository.Repository
}

// NewRepositoryReloadService returns a ReloadService backed by repo.
func NewRepositoryReloadService(repo repository.Repository) ReloadService {
	return &repositoryReloadService{repo: repo}
}

func (s *repositoryReloadService) Reload() (*engine.Build, error) {
	return engine.BuildFromRepository(s.repo)
}

type reloadDoneMsg struct {
	build *engine.Build
	err   error
	at    time.Time
}

type tickMsg time.Time

// Model is the live dashboard: every refreshInterval it reloads the
// compiled program table and shows the outcome plus the registry's
// current dispatch table.
type Model struct {
	service         ReloadService
	refreshInterval time.Duration

	spinner   spinner.Model
	reloading bool

	lastBuild  *engine.Build
	lastErr    error
	lastReload time.Time

	width, height int
}

// NewModel builds a dashboard Model. A non-positive refreshInterval falls
// back to 5 seconds.
func NewModel(service ReloadService, refreshInterval time.Duration) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	if refreshInterval <= 0 {
		refreshInterval = 5 * time.Second
	}
	return Model{service: service, refreshInterval: refreshInterval, spinner: s}
}

// Init kicks off the spinner, an immediate reload, and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reloadCmd(), tickCmd(m.refreshInterval))
}

func (m Model) reloadCmd() tea.Cmd {
	service := m.service
	return func() tea.Msg {
		build, err := service.Reload()
		return reloadDoneMsg{build: build, err: err, at: time.Now()}
	}
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Update handles bubbletea messages: window resize, quit/reload keys, the
// refresh ticker, and the async reload's outcome.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.reloading = true
			return m, m.reloadCmd()
		}
		return m, nil

	case tickMsg:
		m.reloading = true
		return m, tea.Batch(m.reloadCmd(), tickCmd(m.refreshInterval))

	case reloadDoneMsg:
		m.reloading = false
		m.lastReload = msg.at
		if msg.err != nil {
			m.lastErr = msg.err
		} else {
			m.lastErr = nil
			m.lastBuild = msg.build
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RenderOnce performs one synchronous reload and renders the resulting
// frame, for non-interactive callers (piped output) that want the
// dashboard's summary without bubbletea's event loop and spinner
// animation.
func RenderOnce(service ReloadService) (string, error) {
	build, err := service.Reload()
	m := NewModel(service, time.Hour)
	updated, _ := m.Update(reloadDoneMsg{build: build, err: err, at: time.Now()})
	model := updated.(Model)
	return model.View(), err
}

// View renders the dashboard's current state.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("corint — live decision registry") + "\n\n")

	if m.reloading {
		fmt.Fprintf(&b, "%s reloading...\n\n", m.spinner.View())
	}

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("reload failed: "+m.lastErr.Error()) + "\n\n")
	}

	if m.lastBuild != nil {
		fmt.Fprintf(&b, "rules+rulesets compiled: %d\n", len(m.lastBuild.Programs))
		fmt.Fprintf(&b, "pipelines compiled:      %d\n", len(m.lastBuild.Pipelines))
		fmt.Fprintf(&b, "registry entries:        %d\n\n", len(m.lastBuild.Registry.Entries))

		for i, e := range m.lastBuild.Registry.Entries {
			guard := "(always)"
			if e.When.EventType != "" {
				guard = "event.type == " + e.When.EventType
			}
			fmt.Fprintf(&b, "  %2d. %-28s -> %s\n", i+1, guard, e.PipelineID)
		}
		switch {
		case m.lastBuild.Registry.DefaultPipelineID != "":
			fmt.Fprintf(&b, "  default -> %s\n", m.lastBuild.Registry.DefaultPipelineID)
		case m.lastBuild.Registry.DefaultReject:
			b.WriteString("  default -> reject\n")
		default:
			b.WriteString("  default -> approve\n")
		}
	}

	if !m.lastReload.IsZero() {
		fmt.Fprintf(&b, "\nlast reload: %s\n", m.lastReload.Format(time.RFC3339))
	}

	b.WriteString("\n[r] reload now   [q] quit\n")
	return b.String()
}
