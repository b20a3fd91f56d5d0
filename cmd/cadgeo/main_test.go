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
	"github.com/vmihailenco/msgpack/v5"
)

const drawingJSON = `{
  "entities": [
    {"type": "LINE", "handle": "1", "layer": "CL", "start": [0, 0], "end": [100, 0]},
    {"type": "LINE", "handle": "2", "layer": "CL", "start": [100, 0], "end": [250, 0]},
    {"type": "POINT", "handle": "3", "layer": "MARK", "location": [50, 5]},
    {"type": "HATCH", "handle": "4", "layer": "MARK"}
  ]
}`

const schemaYAML = `columns:
  id: {source: raw, attribute: handle}
  station: {source: computed, method: chainage}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "site.json", drawingJSON)
	schema := writeFile(t, dir, "schema.yaml", schemaYAML)
	points := filepath.Join(dir, "points.geojson")
	lines := filepath.Join(dir, "lines.geojson")
	records := filepath.Join(dir, "records.json")

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-crs", "local-planar", "-centerline", "CL", "-schema", schema,
		"-points", points, "-lines", lines, "-records", records, "-workers", "1",
		input,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "Points: 1\n")
	assert.Contains(t, out, "LineStrings: 2\n")
	assert.Contains(t, out, "Skipped: 1\n")
	assert.Contains(t, out, "Centerline: 250.000\n")

	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	data, err := os.ReadFile(points)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, 1)

	var rows []map[string]interface{}
	data, err = os.ReadFile(records)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "0+050.00/상행(좌)/5.0", rows[2]["station"])
	assert.Nil(t, rows[0]["station"])
}

func TestRunMsgpackRecords(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "site.json", drawingJSON)
	cfg := writeFile(t, dir, "cadgeo.yaml", "source_crs: local-planar\ncenterline_layer: CL\nschema: schema.yaml\n")
	writeFile(t, dir, "schema.yaml", schemaYAML)
	records := filepath.Join(dir, "records.msgpack")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-config", cfg, "-records", records, input}, &stdout, &stderr))

	data, err := os.ReadFile(records)
	require.NoError(t, err)
	var rows []map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "3", rows[2]["id"])
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "site.json", drawingJSON)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", nil, "expected one drawing file"},
		{"unknown crs", []string{"-crs", "EPSG:1", input}, "EPSG:1"},
		{"records without schema", []string{"-records", filepath.Join(dir, "r.json"), input}, "needs a schema"},
		{"missing file", []string{filepath.Join(dir, "nope.dxf")}, "nope.dxf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), "error = %v", err)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"ROAD", "SIGN"}, splitList(" ROAD, ,SIGN "))
	assert.Nil(t, splitList(""))
}
