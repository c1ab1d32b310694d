// Package diag writes training diagnostics: the per-sample TSV dump and a
// plot of the fitted per-k-mer levels.
package diag

import (
	"bufio"
	"fmt"
	"os"
)

// TSVWriter streams per-sample training observations to a tab-separated
// file. The header row is always written; data rows are controlled by the
// writeRows toggle so large runs can keep the artifact cheap.
type TSVWriter struct {
	f         *os.File
	w         *bufio.Writer
	writeRows bool
}

// NewTSVWriter creates the diagnostics file and writes the header row.
func NewTSVWriter(path string, writeRows bool) (*TSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create diagnostics file: %w", err)
	}
	w := bufio.NewWriter(f)
	if _, err := fmt.Fprintln(w, "read_idx\tkmer\tlevel_mean\tduration"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write diagnostics header: %w", err)
	}
	return &TSVWriter{f: f, w: w, writeRows: writeRows}, nil
}

// WriteSample emits one observation row. It is a no-op when row writing
// is disabled.
func (t *TSVWriter) WriteSample(readIdx int, kmer string, levelMean, duration float64) error {
	if !t.writeRows {
		return nil
	}
	_, err := fmt.Fprintf(t.w, "%d\t%s\t%.2f\t%.5f\n", readIdx, kmer, levelMean, duration)
	return err
}

// Close flushes and closes the underlying file.
func (t *TSVWriter) Close() error {
	if err := t.w.Flush(); err != nil {
		t.f.Close()
		return err
	}
	return t.f.Close()
}
