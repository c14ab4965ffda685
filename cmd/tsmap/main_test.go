package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyuri/tsmap/internal/model"
	"github.com/dyuri/tsmap/internal/sectortest"
	"github.com/dyuri/tsmap/pkg/tsmap"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func sampleDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	sectors := map[string]sectortest.Sector{
		"sec+0000+0000.base": {
			Items: [][]byte{
				sectortest.Road(1, 0, model.MustToken("look_a"), 42, 43, 0, 0),
				sectortest.City(2, 0, model.MustToken("berlin"), 42),
			},
			Nodes: []model.Node{{Uid: 42}, {Uid: 43}},
		},
		"sec+0001+0000.base": {
			Items: [][]byte{sectortest.Ferry(3, 0, model.MustToken("calais"), 99)},
			Nodes: []model.Node{{Uid: 42}},
		},
	}
	for name, s := range sectors {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), s.Bytes(), 0o644))
	}
	return dir
}

func TestInfoBrief(t *testing.T) {
	dir := sampleDir(t)
	out, err := run(t, "info", "--brief", "--log-level", "error", filepath.Join(dir, "sec+0000+0000.base"))
	require.NoError(t, err)
	assert.Contains(t, out, "items=2 retained=2 nodes=2")
}

func TestInfoFull(t *testing.T) {
	dir := sampleDir(t)
	out, err := run(t, "info", "--brief=false", "--log-level", "error", filepath.Join(dir, "sec+0001+0000.base"))
	require.NoError(t, err)
	assert.Contains(t, out, "Coordinates:        1, 0")
	assert.Contains(t, out, "Checksum:")
	assert.Contains(t, out, "Modified:")
	assert.Contains(t, out, "ferry")
	assert.Contains(t, out, "Trailing bytes:   4")
}

func TestDumpJSON(t *testing.T) {
	dir := sampleDir(t)
	out, err := run(t, "dump", "--format", "json", "--log-level", "error", filepath.Join(dir, "sec+0000+0000.base"))
	require.NoError(t, err)

	var doc struct {
		Items []jsonItem `json:"items"`
		Nodes []jsonNode `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "road", doc.Items[0].Type)
	assert.Equal(t, "look_a", doc.Items[0].Name)
	assert.Equal(t, []uint32{42, 43}, doc.Items[0].Nodes)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, uint32(42), doc.Nodes[0].Uid)
}

func TestDumpUnknownFormat(t *testing.T) {
	dir := sampleDir(t)
	_, err := run(t, "dump", "--format", "xml", filepath.Join(dir, "sec+0000+0000.base"))
	require.Error(t, err)
}

func TestScanWithMetrics(t *testing.T) {
	dir := sampleDir(t)
	out, err := run(t, "scan", "--workers", "2", "--metrics", "--log-level", "error", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Sectors:            2 (0 empty)")
	assert.Contains(t, out, "Nodes:              2")
	assert.Contains(t, out, `tsmap_sectors_total{state="parsed"} 2`)
	assert.Contains(t, out, "tsmap_duplicate_nodes_total 1")
}

func TestValidateWarnings(t *testing.T) {
	dir := sampleDir(t)
	path := filepath.Join(dir, "sec+0001+0000.base")

	out, err := run(t, "validate", "--strict=false", "--log-level", "error", path)
	require.NoError(t, err)
	assert.Contains(t, out, "node 99 not in registry")

	_, err = run(t, "validate", "--strict", "--log-level", "error", path)
	require.Error(t, err)
}

func TestValidateUnknownItem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sec+0000+0000.base")
	data := sectortest.Sector{Items: [][]byte{sectortest.Unknown(0x01, 64)}}.Bytes()
	require.NoError(t, os.WriteFile(path, data, 0o644))

	out, err := run(t, "validate", "--strict=false", "--unknown-tags", "fail", "--log-level", "error", path)
	require.Error(t, err)
	assert.True(t, strings.Contains(out, "unknown_item_type"), out)
}

func TestBadLogLevel(t *testing.T) {
	dir := sampleDir(t)
	_, err := run(t, "info", "--log-level", "loud", filepath.Join(dir, "sec+0000+0000.base"))
	require.Error(t, err)
	// Reset the persistent flag for later tests
	_, _ = run(t, "info", "--log-level", "warn", filepath.Join(dir, "sec+0000+0000.base"))
}

func TestValidatorResults(t *testing.T) {
	v := newValidator("a.base", false)
	v.issues = append(v.issues, tsmap.ValidationError{Field: "nodes", Message: "6 bytes after the node table", Level: "warning"})
	assert.False(t, v.failed())

	var out bytes.Buffer
	v.printResults(&out)
	assert.Contains(t, out.String(), "Validating: a.base")
	assert.Contains(t, out.String(), "⚠ nodes: 6 bytes after the node table")
	assert.Contains(t, out.String(), "Validation passed with 1 warning(s)")

	v.strict = true
	assert.True(t, v.failed())

	v = newValidator("b.base", false)
	v.parseFailed(&tsmap.Error{Code: "truncated", Message: "sector data truncated"})
	assert.True(t, v.failed())
	out.Reset()
	v.printResults(&out)
	assert.Contains(t, out.String(), "✗ parse: sector data truncated (truncated)")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "2.0 MiB", formatBytes(2<<20))
	assert.Equal(t, "3072.0 GiB", formatBytes(3<<40))
}
