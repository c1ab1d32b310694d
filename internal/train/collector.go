// Package train implements the pore-model training pipeline: collecting
// per-k-mer signal observations across reads, selecting a baseline read,
// estimating an initial model by robust statistics, and orchestrating
// per-read recalibration.
package train

import (
	"fmt"

	"github.com/squiggle-data/pore.train/internal/align"
	"github.com/squiggle-data/pore.train/internal/alphabet"
	"github.com/squiggle-data/pore.train/internal/squiggle"
)

// TrainingSample is one observation of a k-mer's signal, contributed by a
// single aligned event. ModelVar records the read's model variance at
// collection time; before the first fit that is the documented default of
// 1.0, not a measured quantity.
type TrainingSample struct {
	LevelMean float64
	LevelStdv float64
	ModelVar  float64
}

// KmerTrainingSet holds the observations for every k-mer of one read,
// indexed by k-mer rank. Sets from different reads are never merged; the
// baseline read's set alone seeds the model.
type KmerTrainingSet struct {
	K       int
	Samples [][]TrainingSample
}

// NewKmerTrainingSet returns an empty set with one slot per k-mer rank.
func NewKmerTrainingSet(k, numKmers int) *KmerTrainingSet {
	return &KmerTrainingSet{K: k, Samples: make([][]TrainingSample, numKmers)}
}

// TotalSamples counts the observations across all k-mer slots.
func (s *KmerTrainingSet) TotalSamples() int {
	n := 0
	for _, slot := range s.Samples {
		n += len(slot)
	}
	return n
}

// CollectTrainingData converts one read's alignment into per-k-mer
// training samples. modelVar is passed explicitly rather than read from
// the read's model so the before-fitting ordering is visible in the
// interface; callers use squiggle.Read.ModelVar.
func CollectTrainingData(read *squiggle.Read, alignment []align.Entry, alpha alphabet.Alphabet, k int, modelVar float64) (*KmerTrainingSet, error) {
	numKmers := alpha.NumKmers(k)
	set := NewKmerTrainingSet(k, numKmers)

	for _, ea := range alignment {
		rank, err := alpha.KmerRank(ea.Kmer)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w: %w", read.Name, align.ErrKmerRank, err)
		}
		if rank < 0 || rank >= numKmers {
			return nil, fmt.Errorf("read %s: %w: rank %d for %q", read.Name, align.ErrKmerRank, rank, ea.Kmer)
		}

		ev := read.Events[ea.Strand][ea.EventIndex]
		set.Samples[rank] = append(set.Samples[rank], TrainingSample{
			LevelMean: ev.Mean,
			LevelStdv: ev.Stdv,
			ModelVar:  modelVar,
		})
	}
	return set, nil
}
