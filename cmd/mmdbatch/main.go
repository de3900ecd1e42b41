// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the mmdbatch command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/mmdbatch"
	"github.com/matt-FFFFFF/mmdbatch/cmd/mmdbatch/compile"
	"github.com/matt-FFFFFF/mmdbatch/cmd/mmdbatch/configcmd"
	"github.com/matt-FFFFFF/mmdbatch/internal/color"
	"github.com/matt-FFFFFF/mmdbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mmdbatch/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

const (
	noColorFlag = "no-color"
	logJSONFlag = "log-json"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		compile.CompileCmd,
		configcmd.ConfigCmd,
	},
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  noColorFlag,
			Usage: "Disable coloured output",
		},
		&cli.BoolFlag{
			Name:  logJSONFlag,
			Usage: "Write log records as JSON",
		},
	},
	Before:    before,
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "mmdbatch",
	Description: `mmdbatch compiles a directory of Mermaid diagram sources into PNG images,
running several copies of the Mermaid CLI (mmdc) at once.

The log level is read from the MMDBATCH_LOG_LEVEL environment variable.`,
	Usage:     "mmdbatch compile -i files -o png",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	color.Setup(os.Stdout, cmd.Bool(noColorFlag))

	if cmd.Bool(logJSONFlag) {
		ctx = ctxlog.New(ctx, ctxlog.JSONLogger)
	}

	return ctx, nil
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", mmdbatch.Version, mmdbatch.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Debug("command completed successfully")
}
