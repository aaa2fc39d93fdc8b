package filter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-audio-ringscope/internal/testutil"
)

const (
	testTaps       = 8
	testSPC        = 32
	sumTolerance   = 1e-12
	coeffTolerance = 1e-12
)

func testParams(cutoff float64) TableParams {
	return TableParams{
		Taps:               testTaps,
		SamplesPerCrossing: testSPC,
		Cutoff:             cutoff,
		Attenuation:        DefaultAttenuation,
	}
}

func TestTableParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *TableParams)
		wantErr bool
	}{
		{"valid", func(*TableParams) {}, false},
		{"odd_taps", func(p *TableParams) { p.Taps = 7 }, true},
		{"too_few_taps", func(p *TableParams) { p.Taps = 0 }, true},
		{"too_many_taps", func(p *TableParams) { p.Taps = 128 }, true},
		{"zero_spc", func(p *TableParams) { p.SamplesPerCrossing = 0 }, true},
		{"zero_cutoff", func(p *TableParams) { p.Cutoff = 0 }, true},
		{"cutoff_above_nyquist", func(p *TableParams) { p.Cutoff = 1.5 }, true},
		{"negative_attenuation", func(p *TableParams) { p.Attenuation = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams(0.5)
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDesignTable_Shape(t *testing.T) {
	table, err := DesignTable(testParams(0.5))
	require.NoError(t, err)

	assert.Equal(t, testTaps*testSPC, table.FilterSize())
	assert.Len(t, table.Deltas, table.FilterSize())
	assert.Equal(t, testTaps, table.Taps)
	testutil.AssertNoNaNOrInf(t, table.Coeffs)
	testutil.AssertNoNaNOrInf(t, table.Deltas)
}

// TestDesignTable_UnitPhaseGain verifies every interpolated phase sums to one,
// including blends that cross into the next tap.
func TestDesignTable_UnitPhaseGain(t *testing.T) {
	for _, cutoff := range []float64{1.0, 0.5, 0.37} {
		table, err := DesignTable(testParams(cutoff))
		require.NoError(t, err)

		for _, frac := range []float64{0, 0.1, 0.25, 0.5, 0.73, 0.99, 0.999999} {
			assert.InDelta(t, 1.0, table.TapSum(frac), sumTolerance,
				"cutoff=%v frac=%v", cutoff, frac)
		}
	}
}

// TestDesignTable_Symmetry verifies the normalized kernel mirrors around its center.
func TestDesignTable_Symmetry(t *testing.T) {
	table, err := DesignTable(testParams(0.5))
	require.NoError(t, err)

	size := table.FilterSize()
	for i := 1; i < size; i++ {
		assert.InDelta(t, table.Coeffs[i], table.Coeffs[size-i], coeffTolerance, "entry %d", i)
	}
	// The center entry (x = 0) dominates everything a full input sample or more away.
	center := size / 2
	for i, c := range table.Coeffs {
		if i > center-testSPC && i < center+testSPC {
			continue
		}
		assert.Less(t, c, table.Coeffs[center], "entry %d exceeds center", i)
	}
}

// TestDesignTable_FullBandIsIdentity verifies that with no band limiting the
// integer phase reduces to a unit impulse on the center tap.
func TestDesignTable_FullBandIsIdentity(t *testing.T) {
	table, err := DesignTable(testParams(1.0))
	require.NoError(t, err)

	weights := table.Weights(nil, 0)
	for k, w := range weights {
		want := 0.0
		if k == testTaps/2 {
			want = 1.0
		}
		assert.InDelta(t, want, w, 1e-12, "tap %d", k)
	}
}

func TestTable_Phase(t *testing.T) {
	table, err := DesignTable(testParams(0.5))
	require.NoError(t, err)

	offset, blend := table.Phase(0.5)
	assert.Equal(t, testSPC/2, offset)
	assert.InDelta(t, 0.0, blend, 1e-12)

	offset, blend = table.Phase(0.5 + 0.25/testSPC)
	assert.Equal(t, testSPC/2, offset)
	assert.InDelta(t, 0.25, blend, 1e-9)
}

func TestTable_ResponseDCGain(t *testing.T) {
	table, err := DesignTable(testParams(0.5))
	require.NoError(t, err)

	resp := table.Response(testSPC * 8)
	assert.InDelta(t, 1.0, resp.Magnitude[0], 1e-9, "DC gain of the oversampled kernel")
}

func TestTable_WriteReadRoundTrip(t *testing.T) {
	table, err := DesignTable(testParams(0.5))
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := table.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	decoded, err := ReadTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, table, decoded)
}

func TestReadTable_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad_magic", append([]byte("NOPE"), make([]byte, 40)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTable(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrBadTableFile)
		})
	}

	t.Run("truncated", func(t *testing.T) {
		table, err := DesignTable(testParams(0.5))
		require.NoError(t, err)
		var buf bytes.Buffer
		_, err = table.WriteTo(&buf)
		require.NoError(t, err)

		_, err = ReadTable(bytes.NewReader(buf.Bytes()[:buf.Len()/2]))
		assert.ErrorIs(t, err, ErrBadTableFile)
	})
}

func TestLoaders(t *testing.T) {
	params := testParams(0.5)
	designed, err := DesignLoader(params)(context.Background())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "kernel.fir")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = designed.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	loaded, err := FileLoader(path)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, designed, loaded)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = DesignLoader(params)(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkDesignTable(b *testing.B) {
	params := DefaultTableParams(2)
	for b.Loop() {
		_, _ = DesignTable(params)
	}
}
