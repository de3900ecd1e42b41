// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/mmdbatch/internal/progress"
)

const reporterBufferSize = 4096

// ErrUserQuit is returned when the user closed the view before the batch finished.
var ErrUserQuit = errors.New("cancelled by user")

// WorkFunc is the work shown by the TUI. It must send its events to reporter.
type WorkFunc func(ctx context.Context, reporter progress.Reporter) error

var _ progress.Reporter = (*TUIReporter)(nil)

// TUIReporter implements progress.Reporter and forwards events to the TUI.
// Reports are buffered so that workers never wait for the terminal.
type TUIReporter struct {
	*progress.ChannelReporter
}

// programSender delivers events to a running program, in order.
type programSender struct {
	program *tea.Program
}

// OnEvent implements progress.Listener.
func (s programSender) OnEvent(event progress.Event) {
	s.program.Send(ProgressEventMsg{Event: event})
}

// NewTUIReporter creates a new TUI progress reporter.
func NewTUIReporter(ctx context.Context, program *tea.Program) *TUIReporter {
	cr := progress.NewChannelReporter(ctx, reporterBufferSize)
	cr.Listen(programSender{program: program})

	return &TUIReporter{ChannelReporter: cr}
}

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model   *Model
	program *tea.Program
	opts    []tea.ProgramOption
}

// NewRunner creates a new TUI runner. Options are passed to the bubbletea program.
func NewRunner(opts ...tea.ProgramOption) *Runner {
	return &Runner{
		model: NewModel(),
		opts:  opts,
	}
}

// Model returns the model, for inspecting the final state after Run.
func (r *Runner) Model() *Model {
	return r.model
}

// Run shows the TUI while work runs, and returns once both have finished.
// Quitting the view early cancels the context given to work and returns ErrUserQuit
// alongside the error from work.
func (r *Runner) Run(ctx context.Context, work WorkFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.program = tea.NewProgram(r.model, append([]tea.ProgramOption{tea.WithContext(ctx)}, r.opts...)...)
	reporter := NewTUIReporter(ctx, r.program)

	workErr := make(chan error, 1)

	go func() {
		err := work(ctx, reporter)
		reporter.Close()
		workErr <- err
		r.program.Send(WorkDoneMsg{Err: err})
	}()

	_, tuiErr := r.program.Run()
	if errors.Is(tuiErr, tea.ErrProgramKilled) {
		tuiErr = nil
	}

	if r.model.UserQuit() {
		cancel()

		tuiErr = errors.Join(tuiErr, ErrUserQuit)
	}

	return errors.Join(<-workErr, tuiErr)
}
