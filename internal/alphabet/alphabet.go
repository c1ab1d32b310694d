// Package alphabet provides k-mer ranking over a fixed nucleotide alphabet.
// The ranking is injected into the training pipeline as a capability so
// tests can substitute a smaller synthetic alphabet.
package alphabet

import "fmt"

// Alphabet ranks fixed-length subsequences (k-mers) of a small base set.
// Implementations must be stateless and safe for concurrent use.
type Alphabet interface {
	// KmerRank returns the lexicographic rank of kmer among all strings of
	// the same length over this alphabet. An error indicates a character
	// outside the alphabet.
	KmerRank(kmer string) (int, error)

	// NumKmers returns the number of distinct k-mers of length k.
	NumKmers(k int) int

	// Size returns the number of bases in the alphabet.
	Size() int
}

// DNA is the standard four-letter nucleotide alphabet in ACGT order, the
// ordering basecallers and pore-model files use.
var DNA Alphabet = dnaAlphabet{}

type dnaAlphabet struct{}

func (dnaAlphabet) Size() int { return 4 }

func (dnaAlphabet) NumKmers(k int) int {
	n := 1
	for i := 0; i < k; i++ {
		n *= 4
	}
	return n
}

func (dnaAlphabet) KmerRank(kmer string) (int, error) {
	rank := 0
	for i := 0; i < len(kmer); i++ {
		rank *= 4
		switch kmer[i] {
		case 'A', 'a':
			// rank += 0
		case 'C', 'c':
			rank += 1
		case 'G', 'g':
			rank += 2
		case 'T', 't':
			rank += 3
		default:
			return 0, fmt.Errorf("base %q at position %d is not a DNA base", kmer[i], i)
		}
	}
	return rank, nil
}
