// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package foreachproviders

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrNotADirectory is returned when the path to list is not a directory.
var ErrNotADirectory = errors.New("not a directory")

// IncludeHidden is a type that indicates whether to include hidden files.
type IncludeHidden bool

var (
	// HiddenInclude tells the provider to include files whose names start with a dot.
	HiddenInclude = IncludeHidden(true)
	// HiddenExclude tells the provider to skip files whose names start with a dot.
	HiddenExclude = IncludeHidden(false)
)

// ItemsProviderFunc returns the items found in a directory.
type ItemsProviderFunc func(ctx context.Context, dir string) ([]string, error)

// ListFilesByExtension is an item provider that lists the regular files directly
// inside a directory whose names end in ext. It does not descend into
// subdirectories, and directories are never returned even if their names match.
// The paths returned are dir joined with the file name, sorted by name.
func ListFilesByExtension(fs afero.Fs, ext string, includeHidden IncludeHidden) ItemsProviderFunc {
	return func(ctx context.Context, dir string) ([]string, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		info, err := fs.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list files in %s: %w", dir, err)
		}

		if !info.IsDir() {
			return nil, fmt.Errorf("failed to list files in %s: %w", dir, ErrNotADirectory)
		}

		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list files in %s: %w", dir, err)
		}

		files := make([]string, 0, len(entries))

		for _, e := range entries {
			name := e.Name()

			if !strings.HasSuffix(name, ext) {
				continue
			}

			if !bool(includeHidden) && strings.HasPrefix(name, ".") {
				continue
			}

			path := filepath.Join(dir, name)

			if !isRegular(fs, path, e) {
				continue
			}

			files = append(files, path)
		}

		return files, nil
	}
}

// isRegular reports whether the entry is a regular file, following symlinks.
func isRegular(fs afero.Fs, path string, info os.FileInfo) bool {
	if info.Mode()&os.ModeSymlink == 0 {
		return info.Mode().IsRegular()
	}

	target, err := fs.Stat(path)

	return err == nil && target.Mode().IsRegular()
}
