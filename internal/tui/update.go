// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/mmdbatch/internal/progress"
)

const (
	durationRounding = 100 * time.Millisecond
	reservedLines    = 6 // title, footer and help
	minVisibleRows   = 3
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// WorkDoneMsg tells the model the run has returned, whether or not it finished the batch.
type WorkDoneMsg struct {
	Err error
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.userQuit = !m.finished

			return m, tea.Quit
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case ProgressEventMsg:
		if m.processProgressEvent(msg.Event) {
			m.quitting = true
			return m, tea.Quit
		}

		return m, nil

	case WorkDoneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render(fmt.Sprintf("mmdbatch: compiling %d diagram files", m.total)))
	b.WriteString("\n")

	for _, r := range m.visibleRows() {
		m.renderRow(&b, r)
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	b.WriteString("\n")

	if !m.quitting {
		b.WriteString(m.styles.Help.Render("'q' to cancel"))
		b.WriteString("\n")
	}

	return b.String()
}

// visibleRows returns the rows that fit the window. Finished rows scroll off
// the top first so that running files stay visible.
func (m *Model) visibleRows() []*FileRow {
	limit := len(m.rows)
	if m.height > 0 {
		limit = max(minVisibleRows, m.height-reservedLines)
	}

	if len(m.rows) <= limit {
		return m.rows
	}

	active := make([]*FileRow, 0, limit)
	done := make([]*FileRow, 0, limit)

	for _, r := range m.rows {
		if r.Status == StatusRunning || r.Status == StatusFailed {
			active = append(active, r)
			continue
		}

		done = append(done, r)
	}

	if len(active) >= limit {
		return active[len(active)-limit:]
	}

	return append(done[len(done)-(limit-len(active)):], active...)
}

func (m *Model) renderRow(b *strings.Builder, r *FileRow) {
	var icon, name string

	switch r.Status {
	case StatusRunning:
		icon = m.spinner.View()
		name = m.styles.Running.Render(r.Name)
	case StatusSuccess:
		icon = m.styles.Success.Render("✓")
		name = m.styles.Success.Render(r.Name)
	case StatusFailed:
		icon = m.styles.Failed.Render("✗")
		name = m.styles.Failed.Render(r.Name)
	default:
		icon = " "
		name = m.styles.Pending.Render(r.Name)
	}

	line := fmt.Sprintf("%s %s", icon, name)

	if r.Output != "" {
		line += m.styles.Pending.Render(" → " + r.Output)
	}

	if !r.StartTime.IsZero() {
		line += m.styles.Pending.Render(fmt.Sprintf(" (%v)", r.Elapsed(m.now()).Round(durationRounding)))
	}

	switch {
	case r.Status == StatusFailed && r.ErrorMsg != "":
		line += " " + m.styles.Error.Render(r.ErrorMsg)
	case r.Status == StatusRunning && r.Info != "":
		line += " " + m.styles.Info.Render(r.Info)
	}

	b.WriteString(line)
	b.WriteString("\n")
}

func (m *Model) renderFooter() string {
	running := 0

	for _, r := range m.rows {
		if r.Status == StatusRunning {
			running++
		}
	}

	counts := fmt.Sprintf("%d/%d compiled, %d failed, %d running", m.succeeded, m.total, m.failed, running)

	elapsed := m.elapsed
	if !m.finished && !m.started.IsZero() {
		elapsed = m.now().Sub(m.started)
	}

	counts += fmt.Sprintf(", %.2f seconds", elapsed.Seconds())

	if m.finished {
		if m.failed > 0 {
			return m.styles.Failed.Render("Done with errors: " + counts)
		}

		return m.styles.Success.Render("Done: " + counts)
	}

	return counts
}
