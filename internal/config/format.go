// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Format is a configuration file syntax.
type Format string

const (
	// FormatYAML is YAML, the default.
	FormatYAML Format = "yaml"
	// FormatHCL is HashiCorp Configuration Language.
	FormatHCL Format = "hcl"
)

var (
	// ErrUnknownFormat is returned for a format other than yaml or hcl.
	ErrUnknownFormat = errors.New("unknown configuration format")
	// ErrDecodeConfig is returned when the configuration cannot be decoded.
	ErrDecodeConfig = errors.New("failed to decode configuration")
	// ErrEncodeConfig is returned when the configuration cannot be encoded.
	ErrEncodeConfig = errors.New("failed to encode configuration")
)

// Environ returns the environment exposed to HCL files as env.
// It is a variable so tests can stub it.
var Environ = os.Environ

// ParseFormat converts a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatHCL:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
	}
}

// FormatFromName picks the format from a file name or URL: HCL for ".hcl",
// YAML for anything else. Query strings are ignored.
func FormatFromName(name string) Format {
	name, _, _ = strings.Cut(name, "?")
	if strings.EqualFold(filepath.Ext(name), ".hcl") {
		return FormatHCL
	}

	return FormatYAML
}

// Decode overlays the settings in data onto a copy of base.
// Settings missing from data keep the value from base.
// The file name is only used in error messages.
func Decode(base *Config, name string, data []byte, format Format) (*Config, error) {
	cfg := *base

	var err error

	switch format {
	case FormatYAML:
		err = decodeYAML(data, &cfg)
	case FormatHCL:
		err = decodeHCL(name, data, &cfg)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, errors.Join(ErrDecodeConfig, err)
	}

	return &cfg, nil
}

// Encode renders the configuration in the given format.
func Encode(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		b, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, errors.Join(ErrEncodeConfig, err)
		}

		return b, nil
	case FormatHCL:
		f := hclwrite.NewEmptyFile()
		gohcl.EncodeIntoBody(cfg, f.Body())

		return hclwrite.Format(f.Bytes()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func decodeYAML(data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	return yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()) //nolint:wrapcheck
}

func decodeHCL(name string, data []byte, cfg *Config) error {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.InitialPos)
	if diags.HasErrors() {
		return diagsToError(diags)
	}

	diags = gohcl.DecodeBody(file.Body, evalContext(), cfg)
	if diags.HasErrors() {
		return diagsToError(diags)
	}

	return nil
}

func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)

	for _, kv := range Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		env[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

func diagsToError(diags hcl.Diagnostics) error {
	var result *multierror.Error

	for _, err := range diags.Errs() {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}
