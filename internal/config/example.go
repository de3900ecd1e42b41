// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

// exampleHeader is valid as a comment in both YAML and HCL.
const exampleHeader = `# mmdbatch configuration, pass it with --config.
# Command line flags that are set explicitly take precedence.
`

// Example renders the default configuration as a starting point for a config file.
func Example(format Format) ([]byte, error) {
	b, err := Encode(Default(), format)
	if err != nil {
		return nil, err
	}

	return append([]byte(exampleHeader), b...), nil
}
