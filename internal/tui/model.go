// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/mmdbatch/internal/progress"
)

// FileStatus represents the current state of a file in the TUI.
type FileStatus int

const (
	// StatusPending is a file waiting for a worker.
	StatusPending FileStatus = iota
	// StatusRunning is a file being compiled.
	StatusRunning
	// StatusSuccess is a file that compiled.
	StatusSuccess
	// StatusFailed is a file that did not compile.
	StatusFailed
)

// String returns a string representation of the file status.
func (s FileStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileRow is the display state of one source file.
type FileRow struct {
	Name      string
	Output    string
	Status    FileStatus
	Info      string
	ErrorMsg  string
	StartTime time.Time
	EndTime   time.Time
}

// Elapsed returns how long the file has been, or was, compiling.
func (r *FileRow) Elapsed(now time.Time) time.Duration {
	if r.StartTime.IsZero() {
		return 0
	}

	if r.EndTime.IsZero() {
		return now.Sub(r.StartTime)
	}

	return r.EndTime.Sub(r.StartTime)
}

// Model represents the TUI application state.
// It is only touched from the bubbletea event loop.
type Model struct {
	rows      []*FileRow
	index     map[string]*FileRow
	total     int
	succeeded int
	failed    int
	started   time.Time
	elapsed   time.Duration
	finished  bool
	quitting  bool
	userQuit  bool
	width     int
	height    int
	spinner   spinner.Model
	styles    *Styles
	now       func() time.Time
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Info    lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// NewModel creates a new TUI model.
func NewModel() *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return &Model{
		index:   make(map[string]*FileRow),
		spinner: s,
		styles:  NewStyles(),
		now:     time.Now,
	}
}

// Finished reports whether the batch finished.
func (m *Model) Finished() bool {
	return m.finished
}

// UserQuit reports whether the user closed the view before the batch finished.
func (m *Model) UserQuit() bool {
	return m.userQuit
}

// Counts returns the number of files, and how many compiled and failed so far.
func (m *Model) Counts() (total, succeeded, failed int) {
	return m.total, m.succeeded, m.failed
}

func (m *Model) row(name string) *FileRow {
	if r, ok := m.index[name]; ok {
		return r
	}

	r := &FileRow{Name: name}
	m.index[name] = r
	m.rows = append(m.rows, r)

	return r
}

// processProgressEvent applies an event to the model.
// It returns true when the batch has finished.
func (m *Model) processProgressEvent(event progress.Event) bool {
	now := event.Timestamp
	if now.IsZero() {
		now = m.now()
	}

	switch event.Type {
	case progress.EventBatchStarted:
		m.total = event.Data.Total
		m.started = now

	case progress.EventStarted:
		r := m.row(event.Item)
		r.Status = StatusRunning
		r.Output = event.Data.Output
		r.StartTime = now

	case progress.EventInfo:
		m.row(event.Item).Info = event.Message

	case progress.EventCompleted:
		r := m.row(event.Item)
		r.Status = StatusSuccess
		r.EndTime = now
		m.succeeded++

	case progress.EventFailed:
		r := m.row(event.Item)
		r.Status = StatusFailed
		r.EndTime = now

		switch {
		case event.Data.StderrLine != "":
			r.ErrorMsg = event.Data.StderrLine
		case event.Data.Error != nil:
			r.ErrorMsg = event.Data.Error.Error()
		}

		m.failed++

	case progress.EventBatchFinished:
		m.total = event.Data.Total
		m.succeeded = event.Data.Succeeded
		m.failed = event.Data.Total - event.Data.Succeeded
		m.elapsed = event.Data.Elapsed
		m.finished = true

		return true
	}

	return false
}
