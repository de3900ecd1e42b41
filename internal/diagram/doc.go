// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diagram compiles a single diagram source file into an image by
// running the external renderer once.
//
// The renderer is invoked as:
//
//	<tool> -i <source> -o <output_dir>/<stem>.png --scale <scale>
//
// and its exit code is the only thing that decides success.
package diagram
