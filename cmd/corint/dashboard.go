package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/corintai/corint/internal/corintui"
	"github.com/corintai/corint/internal/repository"
)

func newDashboardCmd(app *AppContext) *cobra.Command {
	var registryPath string
	var refreshSeconds int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Launch a live-reloading view of a repository's compiled registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if registryPath == "" {
				return fmt.Errorf("corint dashboard: --registry is required")
			}
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return renderDashboardOnce(cmd, registryPath)
			}

			repo := repository.NewFilesystemRepository(registryPath)
			service := corintui.NewRepositoryReloadService(repo)
			model := corintui.NewModel(service, time.Duration(refreshSeconds)*time.Second)

			p := tea.NewProgram(model)
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&registryPath, "registry", "", "repository root to watch")
	cmd.Flags().IntVar(&refreshSeconds, "refresh-seconds", 5, "reload interval in seconds")
	_ = cmd.MarkFlagRequired("registry")
	return cmd
}

// renderDashboardOnce skips the bubbletea event loop entirely when stdout
// isn't a terminal (piped output, CI logs): one reload, one rendered
// frame, no spinner animation or periodic polling.
func renderDashboardOnce(cmd *cobra.Command, registryPath string) error {
	repo := repository.NewFilesystemRepository(registryPath)
	service := corintui.NewRepositoryReloadService(repo)

	view, err := corintui.RenderOnce(service)
	fmt.Fprintln(cmd.OutOrStdout(), view)
	return err
}
