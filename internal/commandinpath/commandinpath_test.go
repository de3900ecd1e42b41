// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandinpath

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/prashantv/gostub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubPath(t *testing.T, path string) {
	t.Helper()

	stubs := gostub.Stub(&LookupEnv, func(key string) (string, bool) {
		if key == "PATH" {
			return path, true
		}

		return "", false
	})
	t.Cleanup(stubs.Reset)
}

func TestFind(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the executable bit")
	}

	tempDir := t.TempDir()
	mockCommandPath := filepath.Join(tempDir, "mockcommand")
	require.NoError(t, os.WriteFile(mockCommandPath, []byte("#!/bin/sh\n"), 0o755))

	notExec := filepath.Join(tempDir, "notexec")
	require.NoError(t, os.WriteFile(notExec, []byte("#!/bin/sh\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "adir"), 0o755))

	tests := []struct {
		name    string
		command string
		path    string
		want    string
		wantErr error
	}{
		{
			name:    "found",
			command: "mockcommand",
			path:    tempDir,
			want:    mockCommandPath,
		},
		{
			name:    "multiple paths",
			command: "mockcommand",
			path:    "/non/existent/path" + string(os.PathListSeparator) + string(os.PathListSeparator) + tempDir,
			want:    mockCommandPath,
		},
		{
			name:    "not found",
			command: "nonexistentcommand",
			path:    tempDir,
			wantErr: ErrCommandNotFound,
		},
		{
			name:    "empty PATH",
			command: "mockcommand",
			path:    "",
			wantErr: ErrCommandNotFound,
		},
		{
			name:    "not executable",
			command: "notexec",
			path:    tempDir,
			wantErr: ErrCommandNotFound,
		},
		{
			name:    "directory",
			command: "adir",
			path:    tempDir,
			wantErr: ErrCommandNotFound,
		},
		{
			name:    "explicit path",
			command: mockCommandPath,
			path:    "",
			want:    mockCommandPath,
		},
		{
			name:    "explicit path missing",
			command: filepath.Join(tempDir, "missing"),
			path:    tempDir,
			wantErr: ErrCommandNotFound,
		},
		{
			name:    "empty command",
			command: "",
			path:    tempDir,
			wantErr: ErrEmptyCommand,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stubPath(t, tc.path)

			got, err := Find(tc.command)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the executable bit")
	}

	tempDir := t.TempDir()
	mockCommandPath := filepath.Join(tempDir, "mmdc")
	require.NoError(t, os.WriteFile(mockCommandPath, []byte("#!/bin/sh\n"), 0o755))

	stubPath(t, tempDir)

	cmd, err := New("a.mmd", "mmdc", "/test/cwd", []string{"-i", "a.mmd"})
	require.NoError(t, err)
	assert.Equal(t, "a.mmd", cmd.Label)
	assert.Equal(t, mockCommandPath, cmd.Path)
	assert.Equal(t, "/test/cwd", cmd.Cwd)
	assert.Equal(t, []string{"-i", "a.mmd"}, cmd.Args)

	cmd, err = New("b.mmd", "nope", "", nil)
	require.ErrorIs(t, err, ErrCommandNotFound)
	assert.Nil(t, cmd)
}
