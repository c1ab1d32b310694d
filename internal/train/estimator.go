package train

import (
	"sort"

	"github.com/squiggle-data/pore.train/internal/alphabet"
	"github.com/squiggle-data/pore.train/internal/model"
)

// EstimateModel fits the initial pore model from the baseline read's
// training set. Each observed k-mer's level mean is set to the median of
// its recorded event levels; the median is robust to the heavy-tailed
// outliers that mis-segmented events produce, without explicit rejection.
// The per-k-mer level stdv is fixed at 1.0: only the central tendency is
// estimated from data, spread is calibrated globally per read.
//
// K-mers with no baseline observations are left at their zero state and
// reported false in the returned usable mask; they must not be scored.
// The model's scaling parameters start at the identity transform
// (shift 0, scale 1, drift 0, var 1) for recalibration to replace.
func EstimateModel(set *KmerTrainingSet, alpha alphabet.Alphabet, k int) (*model.PoreModel, []bool) {
	numKmers := alpha.NumKmers(k)
	m := model.New(k, numKmers)
	usable := make([]bool, numKmers)

	for ki := 0; ki < numKmers && ki < len(set.Samples); ki++ {
		samples := set.Samples[ki]
		if len(samples) == 0 {
			continue
		}

		values := make([]float64, len(samples))
		for i, s := range samples {
			values[i] = s.LevelMean
		}
		sort.Float64s(values)

		m.States[ki].LevelMean = median(values)
		m.States[ki].LevelStdv = 1.0
		usable[ki] = true
	}
	return m, usable
}

// median of a sorted, non-empty slice: the middle element for odd lengths,
// the mean of the two central elements for even lengths.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2.0
	}
	return sorted[n/2]
}
