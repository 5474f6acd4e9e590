// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command and returns what it wrote to stdout.
// Stderr is captured separately so JSON output stays parseable.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if errOut.Len() > 0 {
		t.Logf("stderr: %s", errOut.String())
	}
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "twison dev\n", out)
}

func TestConvertCommand(t *testing.T) {
	outDir := t.TempDir()
	story := filepath.Join("..", "..", "internal", "twine", "testdata", "ferry.html")

	out, err := execute(t, "convert", story, "--out-dir", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "converted: ferry.json (2 passages)")

	data, err := os.ReadFile(filepath.Join(outDir, "ferry.json"))
	require.NoError(t, err)
	var passages []map[string]any
	require.NoError(t, json.Unmarshal(data, &passages))
	require.Len(t, passages, 2)
	assert.Equal(t, "TALK_FERRYMAN", passages[0]["id"])
}

func TestCatalogStoreAndCheck(t *testing.T) {
	catalogDir := t.TempDir()
	story := filepath.Join("..", "..", "internal", "twine", "testdata", "ferry.html")

	out, err := execute(t, "catalog", "store", story, "--catalog-dir", catalogDir)
	require.NoError(t, err)
	assert.Contains(t, out, "indexing ferry (2 topics)")

	out, err = execute(t, "catalog", "store", story, "--catalog-dir", catalogDir)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped ferry")

	out, err = execute(t, "catalog", "check", "--json", "--catalog-dir", catalogDir)
	require.Error(t, err, "a dangling reference should fail the command")
	assert.Contains(t, err.Error(), "1 dangling reference(s)")

	var refs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &refs), "stdout should be JSON: %s", out)
	require.Len(t, refs, 1)
	assert.Equal(t, "ferry", refs[0]["story"])
	assert.Equal(t, "TALK_FERRYMAN_CROSS", refs[0]["from"])
	assert.Equal(t, "Pay->TALK_FERRYMAN_PAID", refs[0]["target"])
	assert.Equal(t, "TALK_FERRYMAN_PAID", refs[0]["resolved"])
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, `"PropertyValue"`)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "Café ca...", truncate("Café caravan", 10))
}
