// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package compile implements the compile command.
package compile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/mmdbatch/internal/compiler"
	"github.com/matt-FFFFFF/mmdbatch/internal/config"
	"github.com/matt-FFFFFF/mmdbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mmdbatch/internal/progress"
	"github.com/matt-FFFFFF/mmdbatch/internal/tui"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

const (
	inputFlag                   = "input"
	outputFlag                  = "output"
	dpiFlag                     = "dpi"
	workersFlag                 = "workers"
	toolFlag                    = "tool"
	extensionFlag               = "extension"
	configFlag                  = "config"
	configTimeoutFlag           = "config-timeout"
	configTimeoutSecondsDefault = 30
	tuiFlag                     = "tui"
	failOnErrorFlag             = "fail-on-error"
)

var (
	// ErrBuildConfig is returned when the configuration cannot be loaded or is invalid.
	ErrBuildConfig = errors.New("failed to build config")
	// ErrFilesFailed is returned with --fail-on-error when any file did not compile.
	ErrFilesFailed = errors.New("some files failed to compile")
)

// CompileCmd is the command that compiles a directory of diagrams.
var CompileCmd = &cli.Command{
	Name:  "compile",
	Usage: "Compile every diagram source file in a directory into PNG images",
	Description: `Compile runs the Mermaid CLI (mmdc) once for every *.mmd file directly inside
the input directory, several at a time, writing <name>.png files into the output directory.

The output directory is deleted and recreated before compiling, anything in it is lost.

A file that fails to compile does not stop the others. The command exits with status 0
once every file has been attempted, unless --fail-on-error is given.

Settings can also come from a YAML or HCL file given with --config. The URL uses
Hashicorp's go-getter syntax, see https://github.com/hashicorp/go-getter.
Flags set on the command line take precedence over the file.`,
	Flags:  newFlags(),
	Action: actionFunc,
}

// newFlags returns the compile flags. Flags keep parse state, each command needs its own set.
func newFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      inputFlag,
			Aliases:   []string{"i"},
			Usage:     "Directory holding the diagram sources",
			Value:     config.DefaultInputDir,
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      outputFlag,
			Aliases:   []string{"o"},
			Usage:     "Directory the images are written to, it is wiped first",
			Value:     config.DefaultOutputDir,
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.IntFlag{
			Name:     dpiFlag,
			Aliases:  []string{"d"},
			Usage:    "Target resolution, the renderer scale is dpi/96",
			Value:    config.DefaultDPI,
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:    workersFlag,
			Aliases: []string{"w", "p"},
			Usage: "Maximum number of renderers running at once. " +
				"0 uses min(32, number of CPUs + 4)",
			Value:    config.DefaultWorkers,
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     toolFlag,
			Usage:    "Renderer executable, looked up on PATH unless it contains a path separator",
			Value:    config.DefaultTool,
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     extensionFlag,
			Usage:    "Extension of the diagram source files",
			Value:    config.DefaultExtension,
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:    configFlag,
			Aliases: []string{"c"},
			Usage: "URL of a YAML or HCL configuration file. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.IntFlag{
			Name:     configTimeoutFlag,
			Usage:    "Seconds allowed for fetching the configuration file",
			Value:    configTimeoutSecondsDefault,
			OnlyOnce: true,
		},
		&cli.BoolFlag{
			Name:        tuiFlag,
			Aliases:     []string{"t", "interactive"},
			Usage:       "Show an interactive view of the files being compiled",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        failOnErrorFlag,
			Usage:       "Exit with status 1 when any file fails to compile",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx)

	cfg, err := buildConfig(ctx, cmd)
	if err != nil {
		logger.Error("configuration error", "error", err)
		return cli.Exit(err.Error(), 1)
	}

	logger.Debug("effective configuration", "config", cfg)

	c := compiler.New(cfg.Tool, cfg.Extension, nil)

	var summary compiler.Summary

	if cmd.Bool(tuiFlag) && isTerminal(cmd.Writer) {
		summary, err = runWithTUI(ctx, cmd, c, cfg)
	} else {
		if cmd.Bool(tuiFlag) {
			logger.Warn("output is not a terminal, interactive view disabled")
		}

		c.Reporter = progress.NewConsoleReporter(cmd.Writer)
		summary, err = c.Run(ctx, cfg.InputDir, cfg.OutputDir, cfg.DPI, cfg.Workers)
	}

	if err != nil {
		logger.Error("compile failed", "error", err)
		return cli.Exit(err.Error(), 1)
	}

	if cfg.FailOnError && summary.Failed() > 0 {
		return cli.Exit(fmt.Sprintf("%s: %d of %d", ErrFilesFailed, summary.Failed(), summary.Total), 1)
	}

	return nil
}

// runWithTUI runs the compiler behind the interactive view. Log lines are held
// back while the view owns the terminal and written out afterwards, followed
// by the summary line.
func runWithTUI(ctx context.Context, cmd *cli.Command, c *compiler.Compiler, cfg *config.Config) (compiler.Summary, error) {
	var (
		summary compiler.Summary
		logBuf  bytes.Buffer
	)

	tuiCtx := ctxlog.NewForTUI(ctx, &logBuf)
	runner := tui.NewRunner(tea.WithOutput(cmd.Writer), tea.WithAltScreen())

	err := runner.Run(tuiCtx, func(ctx context.Context, reporter progress.Reporter) error {
		c.Reporter = reporter

		var runErr error

		summary, runErr = c.Run(ctx, cfg.InputDir, cfg.OutputDir, cfg.DPI, cfg.Workers)

		return runErr
	})

	_, _ = io.Copy(cmd.ErrWriter, &logBuf)

	if summary.Total > 0 || err == nil {
		progress.NewConsoleReporter(cmd.Writer).Report(progress.Event{
			Type:      progress.EventBatchFinished,
			Timestamp: time.Now(),
			Data: progress.EventData{
				Total:     summary.Total,
				Succeeded: summary.Succeeded,
				Elapsed:   summary.Elapsed,
			},
		})
	}

	return summary, err
}

func buildConfig(ctx context.Context, cmd *cli.Command) (*config.Config, error) {
	cfg := config.Default()

	if cmd.IsSet(configFlag) {
		configCtx, configCancel := context.WithTimeout(ctx, time.Duration(cmd.Int(configTimeoutFlag))*time.Second)
		defer configCancel()

		loaded, err := config.Load(configCtx, cfg, cmd.String(configFlag))
		if err != nil {
			return nil, errors.Join(ErrBuildConfig, err)
		}

		cfg = loaded
	}

	cfg.Apply(overrides(cmd))

	if err := cfg.Validate(); err != nil {
		return nil, errors.Join(ErrBuildConfig, err)
	}

	return cfg, nil
}

// overrides collects the flags that were set explicitly.
func overrides(cmd *cli.Command) config.Overrides {
	var o config.Overrides

	if cmd.IsSet(inputFlag) {
		o.InputDir = ptr(cmd.String(inputFlag))
	}

	if cmd.IsSet(outputFlag) {
		o.OutputDir = ptr(cmd.String(outputFlag))
	}

	if cmd.IsSet(dpiFlag) {
		o.DPI = ptr(cmd.Int(dpiFlag))
	}

	if cmd.IsSet(workersFlag) {
		o.Workers = ptr(cmd.Int(workersFlag))
	}

	if cmd.IsSet(toolFlag) {
		o.Tool = ptr(cmd.String(toolFlag))
	}

	if cmd.IsSet(extensionFlag) {
		o.Extension = ptr(cmd.String(extensionFlag))
	}

	if cmd.IsSet(failOnErrorFlag) {
		o.FailOnError = ptr(cmd.Bool(failOnErrorFlag))
	}

	return o
}

func ptr[T any](v T) *T {
	return &v
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
