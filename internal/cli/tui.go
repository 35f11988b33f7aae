package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/m-mizutani/goerr/v2"

	"github.com/j-veylop/sleep-insight-tui/internal/app"
	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/logger"
	"github.com/j-veylop/sleep-insight-tui/internal/services"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/tabs/history"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/tabs/results"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/tabs/settings"
	"github.com/j-veylop/sleep-insight-tui/internal/ui/tabs/upload"
)

// runTUI runs the Bubble Tea program until the user quits.
func runTUI(ctx context.Context, cfg *config.Config) error {
	// The terminal belongs to the TUI from here on.
	logFile, err := logger.SetupFile(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return goerr.Wrap(err, "failed to set up logging", goerr.V("path", cfg.LogPath))
	}
	defer logFile.Close()

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return goerr.Wrap(err, "failed to initialize services")
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	state := app.NewAppState(cfg.ResultsSource)
	model := app.NewModel(svcManager, state)
	model.SetTabs([]app.Tab{
		upload.New(state, svcManager),   // [1] Upload
		results.New(state, svcManager),  // [2] Results
		history.New(state, svcManager),  // [3] History
		settings.New(state, svcManager), // [4] Settings
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	logger.Info("starting TUI", "source", cfg.ResultsSource, "backend", svcManager.BackendURL())
	if _, err := p.Run(); err != nil {
		return goerr.Wrap(err, "error running TUI")
	}
	return nil
}
