// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/mmdbatch/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel() *Model {
	m := NewModel()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return base.Add(2 * time.Second) }

	return m
}

func send(t *testing.T, m *Model, e progress.Event) tea.Cmd {
	t.Helper()

	_, cmd := m.Update(ProgressEventMsg{Event: e})

	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}

	_, ok := cmd().(tea.QuitMsg)

	return ok
}

func TestFileStatus_String(t *testing.T) {
	assert.Equal(t, "pending", StatusPending.String())
	assert.Equal(t, "running", StatusRunning.String())
	assert.Equal(t, "success", StatusSuccess.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "unknown", FileStatus(99).String())
}

func TestFileRow_Elapsed(t *testing.T) {
	start := time.Now()
	r := &FileRow{}
	assert.Zero(t, r.Elapsed(start))

	r.StartTime = start
	assert.Equal(t, time.Second, r.Elapsed(start.Add(time.Second)))

	r.EndTime = start.Add(500 * time.Millisecond)
	assert.Equal(t, 500*time.Millisecond, r.Elapsed(start.Add(time.Hour)))
}

func TestModel_Lifecycle(t *testing.T) {
	m := newTestModel()
	ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, isQuit(send(t, m, progress.Event{Type: progress.EventBatchStarted, Timestamp: ts, Data: progress.EventData{Total: 2}})))
	send(t, m, progress.Event{Type: progress.EventStarted, Item: "a.mmd", Timestamp: ts, Data: progress.EventData{Output: "a.png"}})
	send(t, m, progress.Event{Type: progress.EventStarted, Item: "b.mmd", Timestamp: ts, Data: progress.EventData{Output: "b.png"}})
	send(t, m, progress.Event{Type: progress.EventInfo, Item: "a.mmd", Message: "Generating single mermaid chart"})

	view := m.View()
	assert.Contains(t, view, "compiling 2 diagram files")
	assert.Contains(t, view, "a.mmd")
	assert.Contains(t, view, "→ b.png")
	assert.Contains(t, view, "Generating single mermaid chart")
	assert.Contains(t, view, "0/2 compiled, 0 failed, 2 running")
	assert.Contains(t, view, "'q' to cancel")

	send(t, m, progress.Event{Type: progress.EventCompleted, Item: "a.mmd", Timestamp: ts.Add(time.Second)})
	send(t, m, progress.Event{Type: progress.EventFailed, Item: "b.mmd", Timestamp: ts.Add(time.Second), Data: progress.EventData{
		Error:      errors.New("exit status 1"),
		StderrLine: "Parse error on line 2",
	}})

	total, ok, failed := m.Counts()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	assert.Equal(t, StatusSuccess, m.index["a.mmd"].Status)
	assert.Equal(t, StatusFailed, m.index["b.mmd"].Status)
	assert.Equal(t, "Parse error on line 2", m.index["b.mmd"].ErrorMsg)
	assert.Contains(t, m.View(), "✓")
	assert.Contains(t, m.View(), "✗")
	assert.Contains(t, m.View(), "(1s)")

	cmd := send(t, m, progress.Event{Type: progress.EventBatchFinished, Data: progress.EventData{
		Total: 2, Succeeded: 1, Elapsed: 1500 * time.Millisecond,
	}})
	assert.True(t, isQuit(cmd), "the view closes when the batch finishes")
	assert.True(t, m.Finished())
	assert.False(t, m.UserQuit())

	view = m.View()
	assert.Contains(t, view, "Done with errors: 1/2 compiled, 1 failed, 0 running, 1.50 seconds")
	assert.NotContains(t, view, "'q' to cancel")
}

func TestModel_FailureWithoutStderr(t *testing.T) {
	m := newTestModel()
	send(t, m, progress.Event{Type: progress.EventFailed, Item: "c.mmd", Data: progress.EventData{Error: errors.New("command not found: mmdc")}})
	assert.Equal(t, "command not found: mmdc", m.index["c.mmd"].ErrorMsg)
}

func TestModel_KeyQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		t.Run(key.String(), func(t *testing.T) {
			m := newTestModel()
			_, cmd := m.Update(key)
			assert.True(t, isQuit(cmd))
			assert.True(t, m.UserQuit())
		})
	}

	m := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Nil(t, cmd)
	assert.False(t, m.UserQuit())
}

func TestModel_WorkDoneQuits(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(WorkDoneMsg{Err: errors.New("setup failed")})
	assert.True(t, isQuit(cmd))
	assert.False(t, m.UserQuit(), "work finishing is not a user quit")
}

func TestModel_InitAndSpinner(t *testing.T) {
	m := newTestModel()
	require.NotNil(t, m.Init())

	msg := m.Init()()
	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "spinner keeps ticking")
}

func TestModel_VisibleRows(t *testing.T) {
	m := newTestModel()
	_, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})

	for i := range 10 {
		send(t, m, progress.Event{Type: progress.EventStarted, Item: fmt.Sprintf("f%d.mmd", i)})

		if i < 8 {
			send(t, m, progress.Event{Type: progress.EventCompleted, Item: fmt.Sprintf("f%d.mmd", i)})
		}
	}

	rows := m.visibleRows()
	require.Len(t, rows, 4)
	assert.Equal(t, "f8.mmd", rows[2].Name)
	assert.Equal(t, "f9.mmd", rows[3].Name)
	assert.Equal(t, StatusSuccess, rows[0].Status)

	view := m.View()
	assert.NotContains(t, view, "f0.mmd")
	assert.True(t, strings.Contains(view, "f9.mmd"))
}
