// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package compiler

import "github.com/spf13/afero"

// FsFactory is a function that returns an afero filesystem.
// It is a variable so tests can replace the filesystem used for setup and scanning.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}
