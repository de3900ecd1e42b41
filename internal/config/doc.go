// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config holds the settings of a compile run.
//
// Settings start from Default, are optionally overlaid by a YAML or HCL file
// (local, or fetched with go-getter), and finally by command line flags that
// the user set explicitly. Validate reports every problem at once.
//
// HCL files can read environment variables through the env object:
//
//	input_dir  = "files"
//	output_dir = "${env.HOME}/png"
//	dpi        = 300
package config
