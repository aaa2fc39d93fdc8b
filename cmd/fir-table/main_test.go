package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-ringscope/internal/filter"
)

func TestWriteReadTable(t *testing.T) {
	table, err := filter.DesignTable(filter.DefaultTableParams(2))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ring.fir")
	require.NoError(t, writeTable(path, table))

	got, err := readTable(path)
	require.NoError(t, err)
	assert.Equal(t, table.Taps, got.Taps)
	assert.Equal(t, table.Coeffs, got.Coeffs)
}

func TestReadTable_Missing(t *testing.T) {
	_, err := readTable(filepath.Join(t.TempDir(), "nope.fir"))
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	table, err := filter.DesignTable(filter.DefaultTableParams(2))
	require.NoError(t, err)

	r := analyze(table)
	assert.InDelta(t, 1, r.minTapSum, 1e-9)
	assert.InDelta(t, 1, r.maxTapSum, 1e-9)
	assert.InDelta(t, 0, r.dcGainDB, 0.1)
	assert.Less(t, r.stopbandPeakDB, r.cutoffGainDB)
}

func TestDescribe(t *testing.T) {
	table, err := filter.DesignTable(filter.DefaultTableParams(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	describe(&buf, table)
	assert.Contains(t, buf.String(), "Taps:               8")
	assert.Contains(t, buf.String(), "Cutoff:             0.5000")
}
