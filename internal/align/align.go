// Package align derives the strict one-to-one alignment between basecalled
// k-mer positions and raw signal events that model training consumes.
package align

import (
	"errors"
	"fmt"

	"github.com/squiggle-data/pore.train/internal/alphabet"
	"github.com/squiggle-data/pore.train/internal/squiggle"
)

// ErrKmerRank is returned when a computed k-mer rank falls outside the
// alphabet range. This indicates a corrupted ranking collaborator or a
// malformed basecalled sequence and aborts the run; it is never clamped
// or skipped.
var ErrKmerRank = errors.New("k-mer rank outside alphabet range")

// Entry binds a single basecalled k-mer position to exactly one signal
// event. State is always 'M': only match states feed training and
// recalibration.
type Entry struct {
	Kmer        string
	RefPosition int
	Strand      squiggle.Strand
	EventIndex  int
	State       byte
}

// GenerateAlignment walks every k-mer position of the read's sequence and
// emits an entry for each position the basecaller mapped to exactly one
// event. Positions without an event (gaps) and positions spanning several
// merged events are skipped so multi-event k-mers cannot bias the training
// data. When usable is non-nil, positions whose k-mer rank is marked false
// are skipped as well (the second, mask-restricted pass).
//
// Entries are emitted in increasing reference-position order, at most one
// per position. The function is pure: it never mutates the read.
func GenerateAlignment(read *squiggle.Read, alpha alphabet.Alphabet, k int, strand squiggle.Strand, usable []bool) ([]Entry, error) {
	numKmers := alpha.NumKmers(k)
	if len(read.Sequence) < k {
		return nil, nil
	}

	var alignment []Entry
	nKmers := len(read.Sequence) - k + 1
	for ki := 0; ki < nKmers; ki++ {
		rng := read.EventRangeFor(strand, ki)
		if !rng.Single() {
			continue
		}

		kmer := read.Sequence[ki : ki+k]
		rank, err := alpha.KmerRank(kmer)
		if err != nil {
			return nil, fmt.Errorf("read %s position %d: %w: %w", read.Name, ki, ErrKmerRank, err)
		}
		if rank < 0 || rank >= numKmers {
			return nil, fmt.Errorf("read %s position %d: %w: rank %d for %q, alphabet has %d k-mers", read.Name, ki, ErrKmerRank, rank, kmer, numKmers)
		}

		if usable != nil && !usable[rank] {
			continue
		}

		alignment = append(alignment, Entry{
			Kmer:        kmer,
			RefPosition: ki,
			Strand:      strand,
			EventIndex:  rng.Start,
			State:       'M',
		})
	}
	return alignment, nil
}
