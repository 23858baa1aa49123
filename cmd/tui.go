package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/luoyiti/web-video-player/internal/shared"
	"github.com/luoyiti/web-video-player/internal/ui"
)

// watcher is implemented by snapshot stores that can report external edits.
type watcher interface {
	Watch(ctx context.Context, fn func()) error
}

// TUI launches the interactive catalogue browser.
//
// When the snapshot lives in a file, edits made by other processes are reloaded live.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	bridge := ui.NewBridge()
	engine, err := r.newEngine(bridge.OnStatus)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if w, ok := r.store.(watcher); ok {
		if err := w.Watch(ctx, func() { engine.Reload() }); err != nil {
			r.logger.Warn("snapshot watch disabled", "error", err)
		}
	}

	model := ui.NewModel(ctx, engine, bridge)
	defer model.Close()

	engine.Bootstrap(ctx)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	engine.Wait()
	return nil
}
