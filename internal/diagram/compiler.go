// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package diagram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matt-FFFFFF/mmdbatch/internal/commandinpath"
	"github.com/matt-FFFFFF/mmdbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mmdbatch/internal/progress"
	"github.com/matt-FFFFFF/mmdbatch/internal/runbatch"
)

const (
	// DefaultTool is the renderer executable looked up on PATH.
	DefaultTool = "mmdc"
	// BenignStderr is written to stderr by the renderer during normal operation.
	BenignStderr = "Generating single mermaid chart"
)

// ErrCompileFailed is returned when the renderer did not produce an image.
var ErrCompileFailed = errors.New("compile failed")

// Compiler runs the renderer for one task at a time. It is safe for concurrent use.
type Compiler struct {
	Tool     string            // Renderer executable, a name looked up on PATH or a path. Defaults to DefaultTool.
	Reporter progress.Reporter // Receives per-file events, may be nil.
}

// NewCompiler creates a Compiler for tool reporting to reporter.
func NewCompiler(tool string, reporter progress.Reporter) *Compiler {
	return &Compiler{
		Tool:     tool,
		Reporter: reporter,
	}
}

// CompileOne compiles a single task and reports whether it succeeded, together
// with the source file name. Every failure, whatever the cause, is folded into false.
func (c *Compiler) CompileOne(ctx context.Context, task Task) (bool, string) {
	return c.Job(task).Run(ctx).Succeeded(), task.Name()
}

// Job wraps a task as a runnable for the worker pool.
// The result label is the source file name.
func (c *Compiler) Job(task Task) runbatch.Runnable {
	return &runbatch.FunctionCommand{
		Label: task.Name(),
		Func: func(ctx context.Context) error {
			return c.compile(ctx, task)
		},
	}
}

func (c *Compiler) tool() string {
	if c.Tool == "" {
		return DefaultTool
	}

	return c.Tool
}

func (c *Compiler) compile(ctx context.Context, task Task) error {
	reporter := progress.OrNull(c.Reporter)
	name := task.Name()
	logger := ctxlog.Logger(ctx).With("file", name)

	reporter.Report(progress.Event{
		Type:      progress.EventStarted,
		Item:      name,
		Timestamp: time.Now(),
		Data:      progress.EventData{Output: task.OutputName()},
	})

	cmd, err := commandinpath.New(name, c.tool(), "", task.Args())
	if err != nil {
		logger.Debug("renderer not available", "tool", c.tool(), "error", err)
		return c.fail(reporter, name, err, "")
	}

	res := cmd.Run(ctx)

	stderr := string(res.StdErr)
	if strings.Contains(stderr, BenignStderr) {
		reporter.Report(progress.Event{
			Type:      progress.EventInfo,
			Item:      name,
			Message:   BenignStderr,
			Timestamp: time.Now(),
		})
	}

	if !res.Succeeded() {
		logger.Debug("renderer failed", "exitCode", res.ExitCode, "stderr", stderr)
		return c.fail(reporter, name, res.Error, lastLine(stderr))
	}

	logger.Debug("compiled", "output", task.OutputPath())

	reporter.Report(progress.Event{
		Type:      progress.EventCompleted,
		Item:      name,
		Timestamp: time.Now(),
	})

	return nil
}

func (c *Compiler) fail(reporter progress.Reporter, name string, cause error, stderrLine string) error {
	if cause == nil {
		cause = ErrCompileFailed
	}

	reporter.Report(progress.Event{
		Type:      progress.EventFailed,
		Item:      name,
		Timestamp: time.Now(),
		Data: progress.EventData{
			Error:      cause,
			StderrLine: stderrLine,
		},
	})

	err := fmt.Errorf("%w: %s: %w", ErrCompileFailed, name, cause)
	if stderrLine != "" {
		err = fmt.Errorf("%w: %s", err, stderrLine)
	}

	return err
}

// lastLine returns the last non-blank line of s.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\r\n\t "), "\n")

	return strings.TrimSpace(lines[len(lines)-1])
}
