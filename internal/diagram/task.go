// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package diagram

import (
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// BaseDPI is the resolution the renderer draws at with a scale of 1.
	BaseDPI = 96
	// OutputExtension is the extension of every rendered file.
	OutputExtension = ".png"
)

// Task is one source file to compile. It is immutable once created.
type Task struct {
	source    string
	outputDir string
	scale     float64
}

// NewTask creates a task compiling source into outputDir at the given scale.
func NewTask(source, outputDir string, scale float64) Task {
	return Task{
		source:    source,
		outputDir: outputDir,
		scale:     scale,
	}
}

// Source returns the path of the source file.
func (t Task) Source() string { return t.source }

// OutputDir returns the directory the image is written to.
func (t Task) OutputDir() string { return t.outputDir }

// Scale returns the renderer scale factor.
func (t Task) Scale() float64 { return t.scale }

// Name returns the base name of the source file.
func (t Task) Name() string {
	return filepath.Base(t.source)
}

// OutputName returns the base name of the image, the source stem with the output extension.
func (t Task) OutputName() string {
	name := t.Name()
	return strings.TrimSuffix(name, filepath.Ext(name)) + OutputExtension
}

// OutputPath returns the full path of the image.
func (t Task) OutputPath() string {
	return filepath.Join(t.outputDir, t.OutputName())
}

// Args returns the renderer arguments for this task.
func (t Task) Args() []string {
	return []string{
		"-i", t.source,
		"-o", t.OutputPath(),
		"--scale", FormatScale(t.scale),
	}
}

// ScaleFor converts a target resolution in DPI into a renderer scale factor.
func ScaleFor(dpi int) float64 {
	return float64(dpi) / BaseDPI
}

// FormatScale renders a scale factor with the fewest digits that represent it exactly.
func FormatScale(scale float64) string {
	return strconv.FormatFloat(scale, 'f', -1, 64)
}
