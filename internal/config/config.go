// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Defaults for a compile run.
const (
	DefaultInputDir  = "files"
	DefaultOutputDir = "png"
	DefaultDPI       = 400
	DefaultWorkers   = 0
	DefaultTool      = "mmdc"
	DefaultExtension = ".mmd"
)

var (
	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidDPI is returned for a resolution that is not positive.
	ErrInvalidDPI = errors.New("dpi must be greater than zero")
	// ErrInvalidWorkers is returned for a negative worker count.
	ErrInvalidWorkers = errors.New("workers must not be negative")
	// ErrEmptyInputDir is returned when no input directory is set.
	ErrEmptyInputDir = errors.New("input directory must be set")
	// ErrEmptyOutputDir is returned when no output directory is set.
	ErrEmptyOutputDir = errors.New("output directory must be set")
	// ErrSameDirs is returned when input and output are the same directory.
	ErrSameDirs = errors.New("input and output directories must differ")
	// ErrInvalidExtension is returned for an extension that does not start with a dot.
	ErrInvalidExtension = errors.New("extension must start with '.'")
	// ErrEmptyTool is returned when no renderer is set.
	ErrEmptyTool = errors.New("tool must be set")
)

// Config is the configuration of a compile run.
type Config struct {
	InputDir    string `yaml:"input_dir"     hcl:"input_dir,optional"`
	OutputDir   string `yaml:"output_dir"    hcl:"output_dir,optional"`
	DPI         int    `yaml:"dpi"           hcl:"dpi,optional"`
	Workers     int    `yaml:"workers"       hcl:"workers,optional"`
	Tool        string `yaml:"tool"          hcl:"tool,optional"`
	Extension   string `yaml:"extension"     hcl:"extension,optional"`
	FailOnError bool   `yaml:"fail_on_error" hcl:"fail_on_error,optional"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	return &Config{
		InputDir:  DefaultInputDir,
		OutputDir: DefaultOutputDir,
		DPI:       DefaultDPI,
		Workers:   DefaultWorkers,
		Tool:      DefaultTool,
		Extension: DefaultExtension,
	}
}

// Overrides are values set explicitly on the command line. Nil fields are left alone.
type Overrides struct {
	InputDir    *string
	OutputDir   *string
	DPI         *int
	Workers     *int
	Tool        *string
	Extension   *string
	FailOnError *bool
}

// Apply overlays the non-nil overrides onto c.
func (c *Config) Apply(o Overrides) {
	setIf(&c.InputDir, o.InputDir)
	setIf(&c.OutputDir, o.OutputDir)
	setIf(&c.DPI, o.DPI)
	setIf(&c.Workers, o.Workers)
	setIf(&c.Tool, o.Tool)
	setIf(&c.Extension, o.Extension)
	setIf(&c.FailOnError, o.FailOnError)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.DPI <= 0 {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrInvalidDPI, c.DPI))
	}

	if c.Workers < 0 {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers))
	}

	if c.InputDir == "" {
		result = multierror.Append(result, ErrEmptyInputDir)
	}

	if c.OutputDir == "" {
		result = multierror.Append(result, ErrEmptyOutputDir)
	}

	if c.InputDir != "" && c.OutputDir != "" && filepath.Clean(c.InputDir) == filepath.Clean(c.OutputDir) {
		result = multierror.Append(result, fmt.Errorf("%w: %s", ErrSameDirs, c.InputDir))
	}

	if !strings.HasPrefix(c.Extension, ".") || len(c.Extension) < 2 { //nolint:mnd
		result = multierror.Append(result, fmt.Errorf("%w: %q", ErrInvalidExtension, c.Extension))
	}

	if c.Tool == "" {
		result = multierror.Append(result, ErrEmptyTool)
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}
