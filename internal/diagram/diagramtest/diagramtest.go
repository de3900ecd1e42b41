// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diagramtest provides a fake renderer for tests.
package diagramtest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// FailMarker makes the fake renderer fail when it appears in a source file.
const FailMarker = "FAIL"

// fakeRenderer accepts the real renderer's flags. It writes the scale it was
// given into the output file, and exits 1 when the source contains FailMarker.
// Only shell builtins are used so it works with any PATH.
const fakeRenderer = `#!/bin/sh
in=""
out=""
scale=""
while [ $# -gt 0 ]; do
  case "$1" in
    -i) in="$2"; shift 2 ;;
    -o) out="$2"; shift 2 ;;
    --scale) scale="$2"; shift 2 ;;
    *) shift ;;
  esac
done
echo "Generating single mermaid chart" >&2
content=""
while IFS= read -r line || [ -n "$line" ]; do
  content="$content$line"
done < "$in" || exit 2
case "$content" in
  *` + FailMarker + `*)
    echo "Error: Parse error on line 1:" >&2
    echo "Expecting 'NEWLINE', got 'FAIL'" >&2
    exit 1
    ;;
esac
printf '%s' "$scale" > "$out" || exit 3
`

// Renderer writes the fake renderer into a new temporary directory and
// returns its full path. The test is skipped where /bin/sh is not available.
func Renderer(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake renderer needs /bin/sh")
	}

	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("fake renderer needs /bin/sh")
	}

	path := filepath.Join(t.TempDir(), "mmdc")

	if err := os.WriteFile(path, []byte(fakeRenderer), 0o755); err != nil { //nolint:gosec
		t.Fatalf("failed to write fake renderer: %v", err)
	}

	return path
}
