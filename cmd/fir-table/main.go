// Command fir-table designs, writes and inspects the windowed-sinc
// interpolation tables used by the ring resampler.
//
// Usage:
//
//	fir-table -bins 256 -samples 128 -o ring.fir    # design for a 2:1 ring
//	fir-table -taps 16 -atten 100 -o ring.fir       # longer, steeper kernel
//	fir-table -inspect ring.fir                     # print a table's properties
//
// A written table is loaded by setting filter.path in the visualizer config.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/tphakala/go-audio-ringscope/internal/filter"
)

const (
	defaultBins    = 256
	defaultSamples = 128

	responsePoints = 2048
	phasesToProbe  = 8

	// Stopband is reported from this multiple of the cutoff upwards.
	stopbandStart = 2.0

	nyquistScale = 2.0 // response frequencies run to 0.5 of the table rate
)

func main() {
	if err := run(os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer) error {
	bins := flag.Int("bins", defaultBins, "Magnitude bins per ring (input length)")
	samples := flag.Int("samples", defaultSamples, "Ring vertices (output length)")
	taps := flag.Int("taps", filter.DefaultTaps, "Kernel span in input bins (even)")
	spc := flag.Int("spc", filter.DefaultSamplesPerCrossing, "Table entries per input bin")
	atten := flag.Float64("atten", filter.DefaultAttenuation, "Kaiser stopband attenuation in dB")
	output := flag.String("o", "", "Write the designed table to this file")
	inspect := flag.String("inspect", "", "Read and describe an existing table file")
	flag.Parse()

	if *inspect != "" {
		t, err := readTable(*inspect)
		if err != nil {
			return err
		}
		describe(w, t)
		return nil
	}

	if *samples < 1 || *bins < *samples {
		return fmt.Errorf("bins (%d) must be at least samples (%d)", *bins, *samples)
	}
	params := filter.DefaultTableParams(float64(*bins) / float64(*samples))
	params.Taps = *taps
	params.SamplesPerCrossing = *spc
	params.Attenuation = *atten

	t, err := filter.DesignTable(params)
	if err != nil {
		return err
	}
	describe(w, t)

	if *output == "" {
		return nil
	}
	if err := writeTable(*output, t); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "\nWrote %s\n", *output)
	return nil
}

func readTable(path string) (*filter.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer func() { _ = f.Close() }()
	return filter.ReadTable(bufio.NewReader(f))
}

func writeTable(path string, t *filter.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create table file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	if _, err := t.WriteTo(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// tableReport summarizes a table's behavior.
type tableReport struct {
	minTapSum, maxTapSum float64
	dcGainDB             float64
	cutoffGainDB         float64
	stopbandPeakDB       float64
}

func analyze(t *filter.Table) tableReport {
	r := tableReport{minTapSum: math.Inf(1), maxTapSum: math.Inf(-1)}
	for i := range phasesToProbe {
		s := t.TapSum(float64(i) / phasesToProbe)
		r.minTapSum = math.Min(r.minTapSum, s)
		r.maxTapSum = math.Max(r.maxTapSum, s)
	}

	resp := t.Response(responsePoints)
	r.stopbandPeakDB = math.Inf(-1)
	r.dcGainDB = filter.MagnitudeDB(resp.Magnitude[0])
	for k, f := range resp.Frequencies {
		// Relative to the input Nyquist frequency.
		rel := f * float64(t.SamplesPerCrossing) * nyquistScale
		db := filter.MagnitudeDB(resp.Magnitude[k])
		if rel <= t.Cutoff {
			r.cutoffGainDB = db
		}
		if rel >= stopbandStart*t.Cutoff {
			r.stopbandPeakDB = math.Max(r.stopbandPeakDB, db)
		}
	}
	return r
}

func describe(w io.Writer, t *filter.Table) {
	r := analyze(t)
	_, _ = fmt.Fprintf(w, "Interpolation table:\n")
	_, _ = fmt.Fprintf(w, "  Taps:               %d\n", t.Taps)
	_, _ = fmt.Fprintf(w, "  SamplesPerCrossing: %d\n", t.SamplesPerCrossing)
	_, _ = fmt.Fprintf(w, "  FilterSize:         %d\n", t.FilterSize())
	_, _ = fmt.Fprintf(w, "  Cutoff:             %.4f (of input Nyquist)\n", t.Cutoff)
	_, _ = fmt.Fprintf(w, "  Kaiser beta:        %.4f\n", t.Beta)
	_, _ = fmt.Fprintf(w, "  Memory:             %d bytes\n", t.GetMemoryUsage())
	_, _ = fmt.Fprintf(w, "\nTap sums over %d phases: min %.6f, max %.6f\n", phasesToProbe, r.minTapSum, r.maxTapSum)
	_, _ = fmt.Fprintf(w, "Response: DC %.2f dB, at cutoff %.2f dB, stopband peak %.2f dB\n",
		r.dcGainDB, r.cutoffGainDB, r.stopbandPeakDB)
}
