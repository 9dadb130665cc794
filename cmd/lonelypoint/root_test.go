package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/lonelypoint"
	"github.com/hupe1980/lonelypoint/blobstore"
	"github.com/hupe1980/lonelypoint/crystal"
	"github.com/hupe1980/lonelypoint/structio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStructure(t *testing.T, dir, name string) string {
	t.Helper()
	s := crystal.New(crystal.Cubic(10), []crystal.Atom{
		{Symbol: "Na", Position: crystal.Vec3{0, 0, 0}},
	})
	require.NoError(t, structio.Write(context.Background(), blobstore.NewLocalStore(dir), name, s))
	return filepath.Join(dir, name)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func readOutput(t *testing.T, path string) *crystal.Structure {
	t.Helper()
	s, err := structio.Read(context.Background(), blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path))
	require.NoError(t, err)
	return s
}

func TestRootCmd(t *testing.T) {
	dir := t.TempDir()
	in := writeStructure(t, dir, "Na.cif")

	stdout, _, err := execute(t, "--resolution", "3", in)
	require.NoError(t, err)
	assert.Contains(t, stdout, "=== LONELIEST POINT ===")
	assert.Contains(t, stdout, "Distance to nearest atom: 17.3205 Å")
	assert.Contains(t, stdout, "Cartesian position: [10.0000 10.0000 10.0000] Å")
	assert.Contains(t, stdout, filepath.Join(dir, "lis_Na.cif"))

	out := readOutput(t, filepath.Join(dir, "lis_Na.cif"))
	assert.Equal(t, []string{"Na", "X"}, out.Symbols())
}

func TestRootCmd_OutputAndDump(t *testing.T) {
	dir := t.TempDir()
	in := writeStructure(t, dir, "Na.xyz")
	outPath := filepath.Join(dir, "marked", "Na_marked.vasp.gz")

	_, _, err := execute(t,
		"-n", "4",
		"--marker", "He",
		"--extra-marker", "0.5,0.5,0.5",
		"--dump-candidates", "5",
		"--precision", "2",
		"--max-query-workers", "1",
		"-j", "4",
		"-o", outPath,
		in,
	)
	require.NoError(t, err)

	out := readOutput(t, outPath)
	assert.Equal(t, []string{"Na", "He", "He"}, out.Symbols())

	data, err := os.ReadFile(outPath + ".candidates.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "["))
}

func TestRootCmd_ConfigFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	in := writeStructure(t, dir, "Na.cif")
	cfgPath := filepath.Join(dir, "lonelypoint.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("path: "+in+"\nresolution: 3\nmarker: Ar\nprecision: 1\n"), 0o644))

	stdout, _, err := execute(t, "--config", cfgPath, "--marker", "Kr")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Distance to nearest atom: 17.3 Å")

	out := readOutput(t, filepath.Join(dir, "lis_Na.cif"))
	assert.Equal(t, "Kr", out.At(1).Symbol)
}

func TestRootCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.xyz")
	require.NoError(t, os.WriteFile(empty, []byte("0\nLattice=\"4 0 0 0 4 0 0 0 4\"\n"), 0o644))

	tests := []struct {
		name   string
		args   []string
		target error
	}{
		{"Missing", []string{filepath.Join(dir, "missing.cif")}, lonelypoint.ErrInputNotFound},
		{"NoAtoms", []string{"-n", "3", empty}, lonelypoint.ErrInvalidInput},
		{"Resolution", []string{"-n", "1", writeStructure(t, dir, "Na.cif")}, lonelypoint.ErrInvalidResolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	t.Run("NoInput", func(t *testing.T) {
		_, _, err := execute(t)
		assert.Error(t, err)
	})

	t.Run("TooManyArgs", func(t *testing.T) {
		_, _, err := execute(t, "a.cif", "b.cif")
		assert.Error(t, err)
	})

	t.Run("BadEngine", func(t *testing.T) {
		_, _, err := execute(t, "--engine", "octree", "x.cif")
		assert.Error(t, err)
	})
}
