// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package compiler

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/mmdbatch/internal/diagram/diagramtest"
	"github.com/matt-FFFFFF/mmdbatch/internal/progress"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingReporter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recordingReporter) Report(e progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

func (r *recordingReporter) Close() {}

func (r *recordingReporter) ofType(et progress.EventType) []progress.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []progress.Event

	for _, e := range r.events {
		if e.Type == et {
			res = append(res, e)
		}
	}

	return res
}

// setupDirs creates an input directory holding the given sources and returns
// it with a not yet existing output directory next to it.
func setupDirs(t *testing.T, sources map[string]string) (string, string) {
	t.Helper()

	root := t.TempDir()
	in := filepath.Join(root, "files")
	require.NoError(t, os.Mkdir(in, 0o755))

	for name, content := range sources {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte(content), 0o600))
	}

	return in, filepath.Join(root, "png")
}

func TestRun_MixedResults(t *testing.T) {
	tool := diagramtest.Renderer(t)
	in, out := setupDirs(t, map[string]string{
		"a.mmd": "graph TD; A-->B",
		"b.mmd": diagramtest.FailMarker,
	})
	rep := &recordingReporter{}

	summary, err := New(tool, "", rep).Run(context.Background(), in, out, 400, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed())
	assert.NotEmpty(t, summary.RunID)
	assert.Positive(t, summary.Elapsed)

	assert.FileExists(t, filepath.Join(out, "a.png"))
	assert.NoFileExists(t, filepath.Join(out, "b.png"))

	b, err := os.ReadFile(filepath.Join(out, "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "4.166666666666667", string(b))

	started := rep.ofType(progress.EventBatchStarted)
	require.Len(t, started, 1)
	assert.Equal(t, 2, started[0].Data.Total)

	finished := rep.ofType(progress.EventBatchFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, 1, finished[0].Data.Succeeded)
	assert.Equal(t, 2, finished[0].Data.Total)

	failed := rep.ofType(progress.EventFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, "b.mmd", failed[0].Item)

	assert.Len(t, rep.ofType(progress.EventStarted), 2)
}

func TestRun_EmptyInput(t *testing.T) {
	in, out := setupDirs(t, nil)

	summary, err := New("mmdc", "", nil).Run(context.Background(), in, out, 400, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.Succeeded)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_WipesOutput(t *testing.T) {
	in, out := setupDirs(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Join(out, "stale", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "old.png"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale", "deep", "f"), []byte("x"), 0o600))

	_, err := New("mmdc", "", nil).Run(context.Background(), in, out, 96, 1)
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_Idempotent(t *testing.T) {
	tool := diagramtest.Renderer(t)
	in, out := setupDirs(t, map[string]string{
		"a.mmd": "graph TD;",
		"b.mmd": "graph LR;",
		"c.mmd": diagramtest.FailMarker,
	})

	listing := func() []string {
		entries, err := os.ReadDir(out)
		require.NoError(t, err)

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}

		return names
	}

	c := New(tool, "", nil)

	first, err := c.Run(context.Background(), in, out, 192, 2)
	require.NoError(t, err)

	firstListing := listing()

	second, err := c.Run(context.Background(), in, out, 192, 2)
	require.NoError(t, err)

	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Succeeded, second.Succeeded)
	assert.Equal(t, []string{"a.png", "b.png"}, firstListing)
	assert.Equal(t, firstListing, listing())
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestRun_WorkerCountDoesNotChangeOutcome(t *testing.T) {
	tool := diagramtest.Renderer(t)
	sources := map[string]string{}

	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		content := "graph TD;"
		if n == "c" || n == "f" {
			content = diagramtest.FailMarker
		}

		sources[n+".mmd"] = content
	}

	for _, workers := range []int{1, 3, 0, 64} {
		in, out := setupDirs(t, sources)

		summary, err := New(tool, "", nil).Run(context.Background(), in, out, 96, workers)
		require.NoError(t, err)
		assert.Equal(t, 8, summary.Total, "workers=%d", workers)
		assert.Equal(t, 6, summary.Succeeded, "workers=%d", workers)
	}
}

func TestRun_ToolMissing(t *testing.T) {
	in, out := setupDirs(t, map[string]string{
		"a.mmd": "graph TD;",
		"b.mmd": "graph TD;",
	})
	rep := &recordingReporter{}

	summary, err := New(filepath.Join(t.TempDir(), "no-mmdc"), "", rep).Run(context.Background(), in, out, 400, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Len(t, rep.ofType(progress.EventFailed), 2)
}

func TestRun_OtherExtensionAndIgnoredEntries(t *testing.T) {
	tool := diagramtest.Renderer(t)
	in, out := setupDirs(t, map[string]string{
		"a.mermaid": "graph TD;",
		"b.mmd":     "graph TD;",
		"notes.txt": "hello",
	})
	require.NoError(t, os.Mkdir(filepath.Join(in, "dir.mermaid"), 0o755))

	summary, err := New(tool, ".mermaid", nil).Run(context.Background(), in, out, 96, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.FileExists(t, filepath.Join(out, "a.png"))
}

func TestRun_Cancelled(t *testing.T) {
	tool := diagramtest.Renderer(t)
	in, out := setupDirs(t, map[string]string{
		"a.mmd": "graph TD;",
		"b.mmd": "graph TD;",
		"c.mmd": "graph TD;",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel once the files are found, before anything is dispatched.
	rep := &cancellingReporter{cancel: cancel}

	summary, err := New(tool, "", rep).Run(ctx, in, out, 96, 1)
	require.ErrorIs(t, err, ErrCancelled)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 0, summary.Succeeded)
	assert.NoFileExists(t, filepath.Join(out, "a.png"))
}

type cancellingReporter struct {
	cancel context.CancelFunc
}

func (r *cancellingReporter) Report(e progress.Event) {
	if e.Type == progress.EventBatchStarted {
		r.cancel()
	}
}

func (r *cancellingReporter) Close() {}

func TestRun_SetupErrors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		root := t.TempDir()

		_, err := New("mmdc", "", nil).Run(context.Background(), filepath.Join(root, "nope"), filepath.Join(root, "png"), 96, 0)
		require.ErrorIs(t, err, ErrScanInput)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("same directory", func(t *testing.T) {
		in, _ := setupDirs(t, map[string]string{"a.mmd": "graph TD;"})

		_, err := New("mmdc", "", nil).Run(context.Background(), in, in, 96, 0)
		require.ErrorIs(t, err, ErrOverlappingDirs)
		assert.FileExists(t, filepath.Join(in, "a.mmd"))
	})

	t.Run("output contains input", func(t *testing.T) {
		in, _ := setupDirs(t, map[string]string{"a.mmd": "graph TD;"})

		_, err := New("mmdc", "", nil).Run(context.Background(), in, filepath.Dir(in), 96, 0)
		require.ErrorIs(t, err, ErrOverlappingDirs)
		assert.FileExists(t, filepath.Join(in, "a.mmd"))
	})

	t.Run("read only filesystem", func(t *testing.T) {
		stubs := gostub.Stub(&FsFactory, func() afero.Fs {
			return afero.NewReadOnlyFs(afero.NewMemMapFs())
		})
		defer stubs.Reset()

		_, err := New("mmdc", "", nil).Run(context.Background(), "files", "png", 96, 0)
		require.ErrorIs(t, err, ErrPrepareOutput)
	})
}

func TestRun_MemMapFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("files", 0o755))
	require.NoError(t, afero.WriteFile(fs, "png/stale.png", []byte("x"), 0o644))

	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return fs })
	defer stubs.Reset()

	summary, err := New("mmdc", "", nil).Run(context.Background(), "files", "png", 400, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)

	exists, err := afero.DirExists(fs, "png")
	require.NoError(t, err)
	assert.True(t, exists)

	empty, err := afero.IsEmpty(fs, "png")
	require.NoError(t, err)
	assert.True(t, empty)
}

func TestSummaryFailed(t *testing.T) {
	s := Summary{Total: 5, Succeeded: 3, Elapsed: time.Second}
	assert.Equal(t, 2, s.Failed())
}
