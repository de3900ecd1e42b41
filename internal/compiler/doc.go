// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package compiler compiles every diagram source file in a directory in
// parallel and summarises the outcome.
//
// A run wipes and recreates the output directory, lists the source files,
// compiles each one on a bounded worker pool and counts the successes as the
// results arrive. A failing file never stops the others.
package compiler
