package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ShayCichocki/drover/internal/provider"
	"github.com/ShayCichocki/drover/internal/stream"
	"github.com/ShayCichocki/drover/internal/tui"
	"github.com/ShayCichocki/drover/pkg/models"
)

// executeTUI runs the execution behind the live bubbletea view. The
// provider streams notifications into the program; the final result arrives
// as a DoneMsg and ends it.
func executeTUI(ctx context.Context, p provider.Provider, opts models.ExecutionOptions) (*models.ExecutionResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(tui.NewRunModel(p.Name(), opts.Prompt))
	watchSignals(ctx, cancel, opts.WorkDir)

	type outcome struct {
		res *models.ExecutionResult
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		sink := func(n stream.Notification) {
			program.Send(tui.NoteMsg(n))
		}
		res, err := p.Execute(ctx, opts, sink)
		done <- outcome{res, err}
		program.Send(tui.DoneMsg{Result: res, Err: err})
	}()

	if _, err := program.Run(); err != nil {
		// The view failed or the user quit; the execution keeps its own
		// cancellation via ctx.
		cancel()
	}

	out := <-done
	return out.res, out.err
}
