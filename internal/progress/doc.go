// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries batch and per-file progress events from the
// compiler to whatever is presenting them: coloured console lines, the
// interactive TUI, or nothing at all.
package progress
