// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/mmdbatch/internal/ctxlog"
	"github.com/spf13/afero"
)

// ErrGetConfigFile is returned when the configuration file cannot be read or downloaded.
var ErrGetConfigFile = errors.New("failed to get config file")

// FsFactory is a function that returns an afero filesystem, used for local config files.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

const (
	goGetterForcedSeparator = "::"
	goGetterPathSeparator   = "//"
	goGetterRefSeparator    = "?"
	minimumGetterParts      = 3 // Minimum parts in a go-getter URL: scheme, host, and path
)

// Load reads the configuration at src and overlays it onto base.
// src is a local path or any go-getter URL. The format follows the file extension.
func Load(ctx context.Context, base *Config, src string) (*Config, error) {
	data, err := Fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	ctxlog.Debug(ctx, "loaded config file", "src", src, "bytes", len(data))

	return Decode(base, src, data, FormatFromName(src))
}

// Fetch returns the content of src.
// Plain paths are read from FsFactory, anything that looks like a URL is
// downloaded with go-getter into a temporary directory that is removed afterwards.
func Fetch(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, ErrGetConfigFile
	}

	if !isRemote(src) {
		b, err := afero.ReadFile(FsFactory(), src)
		if err != nil {
			return nil, errors.Join(ErrGetConfigFile, err)
		}

		return b, nil
	}

	return getURL(ctx, src)
}

func isRemote(src string) bool {
	return strings.Contains(src, goGetterForcedSeparator) || strings.Contains(src, "://")
}

// getURL retrieves the content from the specified URL using Hashicorp's go-getter.
func getURL(ctx context.Context, url string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "mmdbatch-getter-*")
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	cli := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     url,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeFile,
		Copy:    true,
	}

	// Repositories can only be fetched as a directory, the file is then read from it.
	// https://github.com/hashicorp/go-getter/issues/98
	newURL, fileName := splitFileNameFromGetterURL(url)
	if newURL != "" {
		req.Src = newURL
		req.GetMode = getter.ModeDir
	}

	ctxlog.Debug(ctx, "downloading config", "src", req.Src, "dir", req.GetMode == getter.ModeDir)

	res, err := cli.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	path := res.Dst
	if fileName != "" {
		path = filepath.Join(res.Dst, fileName)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrGetConfigFile, err)
	}

	return b, nil
}

// splitFileNameFromGetterURL splits a go-getter URL with a subdirectory part
// (`repo//path/file.yaml`) into the URL of the directory holding the file and
// the file name. Any ref query is kept on the new URL. Both are empty when the
// URL has no subdirectory part.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, ok := strings.Cut(last, goGetterRefSeparator); ok {
		ref = after
		last = before
	}

	if last == "" || filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)

	if dir := filepath.Dir(last); dir == "." {
		parts = parts[:len(parts)-1]
	} else {
		parts[len(parts)-1] = dir
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
