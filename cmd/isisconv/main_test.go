package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isis-group/isis-sub000/pkg/config"
	"github.com/isis-group/isis-sub000/pkg/data"
	"github.com/isis-group/isis-sub000/pkg/errors"
	"github.com/isis-group/isis-sub000/pkg/json"
	"github.com/isis-group/isis-sub000/pkg/logger"
	"github.com/isis-group/isis-sub000/pkg/rawio"
)

// run executes the command line and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := logger.Get()
	t.Cleanup(func() { logger.ReplaceGlobal(prev) })

	var out, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "isisconv v"+version)
	assert.Contains(t, out, "Go version:")
}

func TestTypesJSON(t *testing.T) {
	out, err := run(t, "types", "--json")
	require.NoError(t, err)

	var infos []typeInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 28)
	assert.Equal(t, "boolean", infos[0].Name)
	assert.Equal(t, "duration", infos[len(infos)-1].Name)
	assert.Equal(t, "s16bit*", infos[3].ArrayName)
}

func TestTypesTable(t *testing.T) {
	out, err := run(t, "types")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 29)
	assert.Contains(t, lines[0], "CATEGORY")
}

func TestConvert(t *testing.T) {
	out, err := run(t, "convert", "double", "3.7", "--to", "u8bit")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	out, err = run(t, "convert", "s16bit", "300", "--to", "s8bit", "--labeled")
	require.NoError(t, err)
	assert.Equal(t, "127(s8bit)\n", out)

	out, err = run(t, "convert", "u8bit", "5", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"u8bit","value":5}`, out)
}

func TestConvertErrors(t *testing.T) {
	_, err := run(t, "convert", "quaternion", "1")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = run(t, "convert", "date", "2021-01-01", "--to", "s8bit")
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnknownConversion))

	_, err = run(t, "convert", "double")
	assert.Error(t, err)
}

func TestScaling(t *testing.T) {
	out, err := run(t, "scaling", "--from", "double", "--to", "u8bit", "--min", "-5", "--max", "1000")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "double=>u8bit scale=0.2537"), out)

	out, err = run(t, "scaling", "--from", "double", "--to", "u8bit", "--min", "-5", "--max", "1000", "--policy", "noscale")
	require.NoError(t, err)
	assert.Equal(t, "double=>u8bit scale=1 offset=0\n", out)

	_, err = run(t, "scaling", "--from", "double", "--to", "u8bit", "--min", "0", "--max", "1", "--policy", "sideways")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestBadConfigFromEnvironment(t *testing.T) {
	t.Setenv("ISIS_LOG_LEVEL", "chatty")
	_, err := run(t, "version")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isis.yaml")
	require.NoError(t, os.WriteFile(path, []byte("conversion:\n  scaling: noscale\n"), 0o600))

	out, err := run(t, "--config", path, "scaling", "--from", "double", "--to", "u8bit", "--min", "-5", "--max", "1000")
	require.NoError(t, err)
	assert.Equal(t, "double=>u8bit scale=1 offset=0\n", out)
}

func writeInt16s(t *testing.T, path string, vals ...int16) {
	t.Helper()
	a := data.WrapArray(vals, nil)
	defer a.Release()
	require.NoError(t, rawio.WriteFile(path, a, config.Default().Raw))
}

func TestRawStatAndConvert(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.raw")
	writeInt16s(t, in, 4, -2, 9)

	out, err := run(t, "raw", "stat", in, "--type", "s16bit")
	require.NoError(t, err)
	assert.Equal(t, "s16bit* len=3 min=-2 max=9\n", out)

	converted := filepath.Join(dir, "scan.raw.zst")
	out, err = run(t, "raw", "convert", in, converted, "--in-type", "s16bit", "--out-type", "double")
	require.NoError(t, err)
	assert.Equal(t, "s16bit* => double* (3 elements)\n", out)

	out, err = run(t, "raw", "stat", converted, "--type", "double")
	require.NoError(t, err)
	assert.Equal(t, "double* len=3 min=-2 max=9\n", out)

	_, err = run(t, "raw", "stat", in, "--type", "string")
	assert.True(t, errors.IsType(err, errors.ErrorTypeUnsupported))
}

func TestRawExportImport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.raw.gz")
	writeInt16s(t, in, 1, 2, 3)

	out, err := run(t, "raw", "export", in, "--type", "s16bit", "--name", "voxels")
	require.NoError(t, err)
	arrowFile := filepath.Join(dir, "scan.arrow")
	assert.Contains(t, out, arrowFile)
	assert.FileExists(t, arrowFile)

	back := filepath.Join(dir, "back.raw")
	_, err = run(t, "raw", "import", arrowFile, back, "--column", "voxels")
	require.NoError(t, err)

	out, err = run(t, "raw", "stat", back, "--type", "s16bit")
	require.NoError(t, err)
	assert.Equal(t, "s16bit* len=3 min=1 max=3\n", out)

	_, err = run(t, "raw", "import", arrowFile, back, "--column", "missing")
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestRawParquetExportImport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "scan.raw")
	writeInt16s(t, in, -7, 0, 7)

	table := filepath.Join(dir, "scan.parquet")
	_, err := run(t, "raw", "export", in, "--type", "s16bit", "--out", table, "--parquet-compression", "zstd")
	require.NoError(t, err)

	back := filepath.Join(dir, "back.raw.lz4")
	out, err := run(t, "raw", "import", table, back)
	require.NoError(t, err)
	assert.Contains(t, out, `column "s16bit"`)

	out, err = run(t, "raw", "stat", back, "--type", "s16bit")
	require.NoError(t, err)
	assert.Equal(t, "s16bit* len=3 min=-7 max=7\n", out)
}

func TestMetricsDump(t *testing.T) {
	prev := logger.Get()
	t.Cleanup(func() { logger.ReplaceGlobal(prev) })

	var out, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&stderr)
	root.SetArgs([]string{"--metrics", "--log-level", "fatal", "convert", "s16bit", "300", "--to", "s8bit"})
	require.NoError(t, root.Execute())

	assert.Equal(t, "127\n", out.String())
	assert.Contains(t, stderr.String(), `isis_soft_failures_total{type="positive_overflow"}`)
}
