// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package commandinpath resolves an executable name against the PATH
// environment variable and builds OS commands for it.
package commandinpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/matt-FFFFFF/mmdbatch/internal/runbatch"
)

var (
	// ErrCommandNotFound is returned when the command is not found in the PATH.
	ErrCommandNotFound = errors.New("command not found")
	// ErrEmptyCommand is returned when no command name is given.
	ErrEmptyCommand = errors.New("empty command")
)

// LookupEnv reads environment variables. It is a variable so tests can stub it.
var LookupEnv = os.LookupEnv

// Find returns the full path of command.
// A command containing a path separator is used as-is, otherwise each PATH entry
// is searched in order. On Windows the extensions in PATHEXT are also tried.
func Find(command string) (string, error) {
	if command == "" {
		return "", ErrEmptyCommand
	}

	if strings.ContainsRune(command, filepath.Separator) || strings.ContainsRune(command, '/') {
		if isExecutable(command) {
			return command, nil
		}

		return "", fmt.Errorf("%w: %s", ErrCommandNotFound, command)
	}

	path, _ := LookupEnv("PATH")

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			continue
		}

		for _, name := range candidates(command) {
			full := filepath.Join(dir, name)
			if isExecutable(full) {
				return full, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrCommandNotFound, command)
}

// New returns an OS command for the named executable, resolved with Find.
func New(label, command, cwd string, args []string) (*runbatch.OSCommand, error) {
	full, err := Find(command)
	if err != nil {
		return nil, err
	}

	return &runbatch.OSCommand{
		Label: label,
		Path:  full,
		Cwd:   cwd,
		Args:  args,
	}, nil
}

func candidates(command string) []string {
	if runtime.GOOS != "windows" || filepath.Ext(command) != "" {
		return []string{command}
	}

	exts, ok := LookupEnv("PATHEXT")
	if !ok || exts == "" {
		exts = ".com;.exe;.bat;.cmd"
	}

	res := []string{command}
	for _, ext := range strings.Split(exts, ";") {
		if ext != "" {
			res = append(res, command+strings.ToLower(ext))
		}
	}

	return res
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	// check if the command is executable if not Windows
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return false
	}

	return true
}
