// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, &Config{
		InputDir:  "files",
		OutputDir: "png",
		DPI:       400,
		Workers:   0,
		Tool:      "mmdc",
		Extension: ".mmd",
	}, cfg)
	require.NoError(t, cfg.Validate())
}

func TestApply(t *testing.T) {
	cfg := Default()
	cfg.Apply(Overrides{
		OutputDir:   ptr("out"),
		DPI:         ptr(192),
		FailOnError: ptr(true),
	})

	assert.Equal(t, "files", cfg.InputDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 192, cfg.DPI)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, "mmdc", cfg.Tool)
	assert.True(t, cfg.FailOnError)

	cfg.Apply(Overrides{})
	assert.Equal(t, 192, cfg.DPI)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   []error
	}{
		{
			name:   "zero dpi",
			mutate: func(c *Config) { c.DPI = 0 },
			want:   []error{ErrInvalidDPI},
		},
		{
			name:   "negative workers",
			mutate: func(c *Config) { c.Workers = -1 },
			want:   []error{ErrInvalidWorkers},
		},
		{
			name:   "same dirs",
			mutate: func(c *Config) { c.OutputDir = "./files/" },
			want:   []error{ErrSameDirs},
		},
		{
			name:   "bad extension",
			mutate: func(c *Config) { c.Extension = "mmd" },
			want:   []error{ErrInvalidExtension},
		},
		{
			name:   "dot only extension",
			mutate: func(c *Config) { c.Extension = "." },
			want:   []error{ErrInvalidExtension},
		},
		{
			name: "everything wrong at once",
			mutate: func(c *Config) {
				*c = Config{DPI: -5, Workers: -2}
			},
			want: []error{
				ErrInvalidDPI,
				ErrInvalidWorkers,
				ErrEmptyInputDir,
				ErrEmptyOutputDir,
				ErrInvalidExtension,
				ErrEmptyTool,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalidConfig)

			for _, want := range tc.want {
				require.ErrorIs(t, err, want)
			}
		})
	}
}
