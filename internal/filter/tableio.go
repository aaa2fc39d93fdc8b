package filter

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// tableHeader is the fixed little-endian header of a table file.
type tableHeader struct {
	Magic              [4]byte
	Version            uint16
	_                  uint16
	Taps               uint32
	SamplesPerCrossing uint32
	Cutoff             float64
	Beta               float64
}

// ErrBadTableFile indicates a table file that is truncated or not a table.
var ErrBadTableFile = errors.New("malformed filter table file")

// WriteTo serializes the table: header, then FilterSize coefficients,
// then FilterSize deltas, all little-endian float64.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	hdr := tableHeader{
		Version:            tableVersion,
		Taps:               uint32(t.Taps),
		SamplesPerCrossing: uint32(t.SamplesPerCrossing),
		Cutoff:             t.Cutoff,
		Beta:               t.Beta,
	}
	copy(hdr.Magic[:], tableMagic)

	cw := &countingWriter{w: w}
	if err := binary.Write(cw, binary.LittleEndian, &hdr); err != nil {
		return cw.n, fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(cw, binary.LittleEndian, t.Coeffs); err != nil {
		return cw.n, fmt.Errorf("write coefficients: %w", err)
	}
	if err := binary.Write(cw, binary.LittleEndian, t.Deltas); err != nil {
		return cw.n, fmt.Errorf("write deltas: %w", err)
	}
	return cw.n, nil
}

// ReadTable decodes a table previously written with WriteTo.
func ReadTable(r io.Reader) (*Table, error) {
	var hdr tableHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrBadTableFile, err)
	}
	if string(hdr.Magic[:]) != tableMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadTableFile, hdr.Magic[:])
	}
	if hdr.Version != tableVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadTableFile, hdr.Version)
	}

	params := TableParams{
		Taps:               int(hdr.Taps),
		SamplesPerCrossing: int(hdr.SamplesPerCrossing),
		Cutoff:             hdr.Cutoff,
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadTableFile, err)
	}

	size := params.FilterSize()
	t := &Table{
		Coeffs:             make([]float64, size),
		Deltas:             make([]float64, size),
		Taps:               params.Taps,
		SamplesPerCrossing: params.SamplesPerCrossing,
		Cutoff:             hdr.Cutoff,
		Beta:               hdr.Beta,
	}
	if err := binary.Read(r, binary.LittleEndian, t.Coeffs); err != nil {
		return nil, fmt.Errorf("%w: coefficients: %w", ErrBadTableFile, err)
	}
	if err := binary.Read(r, binary.LittleEndian, t.Deltas); err != nil {
		return nil, fmt.Errorf("%w: deltas: %w", ErrBadTableFile, err)
	}
	return t, nil
}

// FileLoader returns a Loader that reads a table file from disk.
func FileLoader(path string) Loader {
	return func(ctx context.Context) (*Table, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open filter table: %w", err)
		}
		defer func() { _ = f.Close() }()
		return ReadTable(bufio.NewReader(f))
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
