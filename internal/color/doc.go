// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color colorizes console output with ANSI escape codes.
//
// Nothing is colored until the program entry point calls Setup. Setup checks the
// NO_COLOR and FORCE_COLOR environment variables and, if neither is set, whether the
// output is a terminal using the golang.org/x/term package.
package color
