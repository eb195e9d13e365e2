package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anurag-upadhay/oofem/internal/monitoring"
	"github.com/anurag-upadhay/oofem/internal/rve"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	original := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = original })

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

var scenarioArgs = []string{
	"generate",
	"--min-density", "0.2",
	"--box-size", "10",
	"--min-radius", "0.5",
	"--max-radius", "1.0",
	"--forced-dist", "0.1",
	"--ndim", "2",
	"--seed", "42",
}

type generated struct {
	Inclusions []rve.Inclusion `json:"inclusions"`
	Placement  []int           `json:"placement"`
	Density    float64         `json:"density"`
	Summary    rve.Summary     `json:"summary"`
}

func TestGenerateCommand(t *testing.T) {
	t.Setenv(configEnv, "")

	out, _, err := execute(t, "", append(scenarioArgs, "--verify")...)
	require.NoError(t, err)

	var got generated
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.Inclusions)
	assert.Len(t, got.Placement, len(got.Inclusions))
	assert.GreaterOrEqual(t, got.Density, 0.2)
	assert.Equal(t, got.Summary.Originals+got.Summary.Images, len(got.Inclusions))

	again, _, err := execute(t, "", append(scenarioArgs, "--verify")...)
	require.NoError(t, err)
	var second generated
	require.NoError(t, json.Unmarshal([]byte(again), &second))
	assert.Equal(t, got.Inclusions, second.Inclusions, "same seed, same packing")
}

func TestGenerateCommand_ConfigAndOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "run.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
  "min_density": 0.15,
  "box_size": 8,
  "min_radius": 0.4,
  "max_radius": 0.8,
  "forced_dist": 0.05,
  "ndim": 3,
  "seed": 9,
  "index": "kdtree"
}`), 0644))
	t.Setenv(configEnv, cfgPath)

	metricsPath := filepath.Join(dir, "rvegen.prom")
	out, _, err := execute(t, "", "generate", "--ndim", "2", "--summary-only", "--metrics-file", metricsPath)
	require.NoError(t, err)

	var s rve.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 0.15, s.TargetDensity)
	assert.GreaterOrEqual(t, s.Density, 0.15)
	assert.GreaterOrEqual(t, s.RadiusMin, 0.4)
	assert.LessOrEqual(t, s.RadiusMax, 0.8)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "rvegen_inclusions_total")
	assert.Contains(t, string(metrics), "rvegen_density")
}

func TestGenerateCommand_Errors(t *testing.T) {
	t.Setenv(configEnv, "")

	t.Run("invalid parameters", func(t *testing.T) {
		_, _, err := execute(t, "", "generate", "--min-radius", "2", "--max-radius", "1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, rve.ErrInvalidParameters))
	})

	t.Run("invalid dimension", func(t *testing.T) {
		_, _, err := execute(t, "", "generate", "--ndim", "4")
		assert.True(t, errors.Is(err, rve.ErrInvalidDimension))
	})

	t.Run("infeasible", func(t *testing.T) {
		_, _, err := execute(t, "", "generate", "--ndim", "2", "--min-density", "0.95", "--max-misses", "200")
		assert.True(t, errors.Is(err, rve.ErrPackingInfeasible))
	})

	t.Run("missing config file", func(t *testing.T) {
		_, _, err := execute(t, "", "generate", "--config", filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})
}

func TestExtractCommand(t *testing.T) {
	packing := `[
  {"radius": 0.5, "center": [1.2, 0.5]},
  {"radius": 0.1, "center": [2, 2]},
  {"radius": 0.2, "center": [0.5, 0.5]}
]`

	t.Run("bare array from stdin", func(t *testing.T) {
		out, _, err := execute(t, packing, "extract", "--corner", "0,0", "--size", "1")
		require.NoError(t, err)

		var got []rve.Inclusion
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 2)
		assert.Equal(t, rve.Point{1.2, 0.5}, got[0].Center)
		assert.Equal(t, rve.Point{0.5, 0.5}, got[1].Center)
	})

	t.Run("generate output from file", func(t *testing.T) {
		t.Setenv(configEnv, "")
		gen, _, err := execute(t, "", scenarioArgs...)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "packing.json")
		require.NoError(t, os.WriteFile(path, []byte(gen), 0644))

		out, _, err := execute(t, "", "extract", "-i", path, "--corner", "0, 0", "--size", "10")
		require.NoError(t, err)

		var got []rve.Inclusion
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.NotEmpty(t, got)
	})

	t.Run("nothing inside", func(t *testing.T) {
		out, _, err := execute(t, packing, "extract", "--corner", "50,50", "--size", "1")
		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, _, err := execute(t, packing, "extract", "--corner", "0,0,0", "--size", "1")
		assert.True(t, errors.Is(err, rve.ErrDimensionMismatch))
	})

	t.Run("bad corner", func(t *testing.T) {
		_, _, err := execute(t, packing, "extract", "--corner", "0,x", "--size", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid corner")
	})

	t.Run("empty input", func(t *testing.T) {
		_, _, err := execute(t, "  ", "extract", "--corner", "0,0", "--size", "1")
		require.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dev", got["version"])
}

func TestRootVersionFlag(t *testing.T) {
	out, _, err := execute(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev (unknown, built unknown)")
}
