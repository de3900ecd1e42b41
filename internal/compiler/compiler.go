// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package compiler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/mmdbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mmdbatch/internal/diagram"
	"github.com/matt-FFFFFF/mmdbatch/internal/foreachproviders"
	"github.com/matt-FFFFFF/mmdbatch/internal/progress"
	"github.com/matt-FFFFFF/mmdbatch/internal/runbatch"
	"github.com/spf13/afero"
)

const (
	// DefaultExtension is the extension of diagram source files.
	DefaultExtension = ".mmd"
	outputDirPerm    = 0o755
)

var (
	// ErrPrepareOutput is returned when the output directory cannot be wiped or created.
	ErrPrepareOutput = errors.New("failed to prepare output directory")
	// ErrScanInput is returned when the input directory cannot be listed.
	ErrScanInput = errors.New("failed to scan input directory")
	// ErrOverlappingDirs is returned when wiping the output directory would delete the sources.
	ErrOverlappingDirs = errors.New("output directory must not contain the input directory")
	// ErrCancelled is returned when the run was interrupted before every file was compiled.
	ErrCancelled = errors.New("run cancelled")
)

// Compiler compiles directories of diagram sources.
type Compiler struct {
	Tool      string            // Renderer executable, defaults to diagram.DefaultTool.
	Extension string            // Source file extension, defaults to DefaultExtension.
	Reporter  progress.Reporter // Receives batch and per-file events, may be nil.
}

// New creates a Compiler.
func New(tool, extension string, reporter progress.Reporter) *Compiler {
	return &Compiler{
		Tool:      tool,
		Extension: extension,
		Reporter:  reporter,
	}
}

// Run compiles every source file directly inside inputDir into outputDir at
// the given resolution, using at most workers concurrent renderer processes.
// workers <= 0 selects runbatch.DefaultPoolSize.
//
// outputDir is deleted and recreated empty before anything else happens.
// Per-file failures are only counted, the returned error is reserved for
// setup failures and cancellation.
func (c *Compiler) Run(ctx context.Context, inputDir, outputDir string, dpi, workers int) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.NewString()}

	logger := ctxlog.Logger(ctx).With("runID", summary.RunID)
	ctx = ctxlog.New(ctx, logger)
	reporter := progress.OrNull(c.Reporter)

	logger.Debug("starting run",
		"inputDir", inputDir,
		"outputDir", outputDir,
		"dpi", dpi,
		"workers", workers,
	)

	fs := FsFactory()

	if err := checkDirs(inputDir, outputDir); err != nil {
		return summary, err
	}

	if err := prepareOutput(fs, outputDir); err != nil {
		return summary, err
	}

	files, err := foreachproviders.ListFilesByExtension(fs, c.extension(), foreachproviders.HiddenInclude)(ctx, inputDir)
	if err != nil {
		return summary, errors.Join(ErrScanInput, err)
	}

	summary.Total = len(files)
	scale := diagram.ScaleFor(dpi)

	logger.Debug("found source files", "count", summary.Total, "scale", diagram.FormatScale(scale))

	reporter.Report(progress.Event{
		Type:      progress.EventBatchStarted,
		Timestamp: time.Now(),
		Data:      progress.EventData{Total: summary.Total},
	})

	dc := diagram.NewCompiler(c.Tool, reporter)
	jobs := make([]runbatch.Runnable, 0, len(files))

	for _, f := range files {
		jobs = append(jobs, dc.Job(diagram.NewTask(f, outputDir, scale)))
	}

	pool := &runbatch.WorkerPool{Size: workers}

	// Only this loop touches the counter.
	for res := range pool.Run(ctx, jobs) {
		if res.Succeeded() {
			summary.Succeeded++
			continue
		}

		logger.Debug("file failed", "file", res.Label, "error", res.Error)
	}

	summary.Elapsed = time.Since(start)

	reporter.Report(progress.Event{
		Type:      progress.EventBatchFinished,
		Timestamp: time.Now(),
		Data: progress.EventData{
			Total:     summary.Total,
			Succeeded: summary.Succeeded,
			Elapsed:   summary.Elapsed,
		},
	})

	logger.Info("run finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"elapsed", summary.Elapsed.String(),
	)

	if err := ctx.Err(); err != nil {
		return summary, errors.Join(ErrCancelled, err)
	}

	return summary, nil
}

func (c *Compiler) extension() string {
	if c.Extension == "" {
		return DefaultExtension
	}

	return c.Extension
}

// prepareOutput removes dir and everything in it, then creates it again, empty.
func prepareOutput(fs afero.Fs, dir string) error {
	if err := fs.RemoveAll(dir); err != nil {
		return errors.Join(ErrPrepareOutput, err)
	}

	if err := fs.MkdirAll(dir, outputDirPerm); err != nil {
		return errors.Join(ErrPrepareOutput, err)
	}

	return nil
}

// checkDirs refuses an output directory that is, or contains, the input directory.
func checkDirs(inputDir, outputDir string) error {
	in, err := filepath.Abs(inputDir)
	if err != nil {
		return errors.Join(ErrScanInput, err)
	}

	out, err := filepath.Abs(outputDir)
	if err != nil {
		return errors.Join(ErrPrepareOutput, err)
	}

	rel, err := filepath.Rel(out, in)
	if err != nil {
		return nil
	}

	if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: input %s, output %s", ErrOverlappingDirs, inputDir, outputDir)
	}

	return nil
}
