// Package stimulus reads and writes single-column sample files.
//
// Input files may have several delimited columns; only the first is used.
// Lines starting with '#' are comments. A non-numeric first row is taken as
// a header and skipped.
package stimulus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrEmpty is returned when a file holds no samples.
var ErrEmpty = errors.New("stimulus: no samples")

// Read parses the first column of r.
func Read(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var out []float64
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("stimulus: %w", err)
		}
		field := strings.TrimSpace(rec[0])
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			if row == 0 {
				continue
			}
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("stimulus: line %d: %w", line, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// ReadFile opens path and parses it with Read.
func ReadFile(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stimulus: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Levels converts samples to integer drive levels for an input port of the
// given width: a one-bit port gets v > 0, a wider one the rounded value.
func Levels(samples []float64, width int) []int64 {
	out := make([]int64, len(samples))
	for i, v := range samples {
		switch {
		case width == 1 && v > 0:
			out[i] = 1
		case width == 1:
			out[i] = 0
		default:
			out[i] = int64(math.Round(v))
		}
	}
	return out
}

// Write emits samples as a single-column file with a comment header.
func Write(w io.Writer, header string, samples []int64) error {
	if header != "" {
		for _, line := range strings.Split(header, "\n") {
			if _, err := fmt.Fprintf(w, "# %s\n", line); err != nil {
				return err
			}
		}
	}
	cw := csv.NewWriter(w)
	for _, v := range samples {
		if err := cw.Write([]string{strconv.FormatInt(v, 10)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and writes samples to it.
func WriteFile(path, header string, samples []int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stimulus: %w", err)
	}
	if err := Write(f, header, samples); err != nil {
		f.Close()
		return fmt.Errorf("stimulus: write %s: %w", path, err)
	}
	return f.Close()
}
