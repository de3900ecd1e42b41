// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package configcmd implements the config command and its subcommands.
package configcmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matt-FFFFFF/mmdbatch/internal/config"
	"github.com/urfave/cli/v3"
)

const (
	formatFlag         = "format"
	sourceArg          = "source"
	timeoutFlag        = "timeout"
	timeoutSecsDefault = 30
)

// ErrMissingSource is returned when validate is called without a file.
var ErrMissingSource = errors.New("configuration file URL is required")

// ConfigCmd groups the configuration helpers.
var ConfigCmd = &cli.Command{
	Name:  "config",
	Usage: "Work with configuration files",
	Commands: []*cli.Command{
		newExampleCmd(),
		newValidateCmd(),
	},
}

func newExampleCmd() *cli.Command {
	return &cli.Command{
		Name:  "example",
		Usage: "Print an example configuration file holding the default settings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     formatFlag,
				Aliases:  []string{"f"},
				Usage:    "Output format, yaml or hcl",
				Value:    string(config.FormatYAML),
				OnlyOnce: true,
			},
		},
		Action: exampleAction,
	}
}

func newValidateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Fetch a configuration file, check it, and print the resulting settings",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     timeoutFlag,
				Usage:    "Seconds allowed for fetching the file",
				Value:    timeoutSecsDefault,
				OnlyOnce: true,
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: sourceArg,
			},
		},
		Action: validateAction,
	}
}

func exampleAction(_ context.Context, cmd *cli.Command) error {
	format, err := config.ParseFormat(cmd.String(formatFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	out, err := config.Example(format)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	_, _ = cmd.Writer.Write(out)

	return nil
}

func validateAction(ctx context.Context, cmd *cli.Command) error {
	src := cmd.StringArg(sourceArg)
	if src == "" {
		return cli.Exit(ErrMissingSource.Error(), 1)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cmd.Int(timeoutFlag))*time.Second)
	defer cancel()

	cfg, err := config.Load(ctx, config.Default(), src)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if err := cfg.Validate(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	out, err := config.Encode(cfg, config.FormatFromName(src))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	_, _ = fmt.Fprintf(cmd.Writer, "# %s is valid\n", src)
	_, _ = cmd.Writer.Write(out)

	return nil
}
