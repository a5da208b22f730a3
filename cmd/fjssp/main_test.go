package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInstance(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toy.txt")
	require.NoError(t, os.WriteFile(path, []byte("1 2\n2 2 1 5 2 3 2 1 4 2 6\n"), 0o644))
	return path
}

func TestRunMethodCbcReturnsMIPUnavailable(t *testing.T) {
	path := writeInstance(t)
	err := run(path, "cbc", 1, "N", "N", 1, "")
	assert.True(t, errors.Is(err, ErrMIPSolverUnavailable))
}

func TestRunMethodBothProducesResultsCSV(t *testing.T) {
	path := writeInstance(t)
	require.NoError(t, run(path, "both", 1, "N", "N", 1, ""))

	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var sawDump, sawCSV bool
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".csv" {
			sawCSV = true
		}
		if filepath.Ext(e.Name()) == ".txt" && e.Name() != "toy.txt" {
			sawDump = true
		}
	}
	assert.True(t, sawCSV, "expected a .results.csv file")
	assert.True(t, sawDump, "expected a .dump.txt file")
}

func TestRunUnknownMethodErrors(t *testing.T) {
	path := writeInstance(t)
	err := run(path, "bogus", 1, "N", "N", 1, "")
	assert.Error(t, err)
}
