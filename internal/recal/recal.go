// Package recal adjusts a read's global model parameters — shift, scale,
// optionally drift, and variance — so the shared baseline model matches
// that read's signal characteristics. Per-k-mer level means stay shared;
// only the scaling diverges per read.
package recal

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/squiggle-data/pore.train/internal/align"
	"github.com/squiggle-data/pore.train/internal/alphabet"
	"github.com/squiggle-data/pore.train/internal/squiggle"
)

// RecalibrateRead fits the read's shift and scale (and drift when
// fitDrift is set) by ordinary least squares of observed event levels
// against the model's per-k-mer level means, then sets the model variance
// from the fit residuals. The read must already carry the baseline model.
//
// An alignment with fewer usable entries than free parameters, or one
// whose design matrix is singular (every entry the same k-mer, so level
// carries no information), leaves the read at its pre-call identity
// parameters: too little signal to personalise the model is not an error.
func RecalibrateRead(read *squiggle.Read, strand squiggle.Strand, alignment []align.Entry, alpha alphabet.Alphabet, fitDrift bool) error {
	m := read.Model(strand)
	if m == nil {
		return fmt.Errorf("read %s %s strand: no model to recalibrate", read.Name, strand)
	}

	cols := 2
	if fitDrift {
		cols = 3
	}
	n := len(alignment)
	if n < cols {
		// Keep the identity parameters and still advance the model phase:
		// the read has been through recalibration, it just had nothing to
		// learn from.
		return read.SetCalibration(strand, m.Shift, m.Scale, m.Drift, m.Var)
	}

	A := mat.NewDense(n, cols, nil)
	y := mat.NewVecDense(n, nil)
	for i, ea := range alignment {
		rank, err := alpha.KmerRank(ea.Kmer)
		if err != nil {
			return fmt.Errorf("read %s: %w: %w", read.Name, align.ErrKmerRank, err)
		}
		if rank < 0 || rank >= len(m.States) {
			return fmt.Errorf("read %s: %w: rank %d for %q", read.Name, align.ErrKmerRank, rank, ea.Kmer)
		}
		ev := read.Events[strand][ea.EventIndex]

		A.Set(i, 0, 1.0)
		A.Set(i, 1, m.States[rank].LevelMean)
		if fitDrift {
			A.Set(i, 2, ev.Start)
		}
		y.SetVec(i, ev.Mean)
	}

	var qr mat.QR
	qr.Factorize(A)
	params := mat.NewVecDense(cols, nil)
	if err := qr.SolveVecTo(params, false, y); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			// Rank-deficient fit, e.g. a homopolymer read whose usable
			// entries all share one k-mer. Keep the identity parameters.
			return read.SetCalibration(strand, m.Shift, m.Scale, m.Drift, m.Var)
		}
		return fmt.Errorf("read %s: least-squares solve failed: %w", read.Name, err)
	}

	shift := params.AtVec(0)
	scale := params.AtVec(1)
	drift := 0.0
	if fitDrift {
		drift = params.AtVec(2)
	}

	var ss float64
	for i := 0; i < n; i++ {
		pred := shift + scale*A.At(i, 1)
		if fitDrift {
			pred += drift * A.At(i, 2)
		}
		r := y.AtVec(i) - pred
		ss += r * r
	}
	varr := math.Sqrt(ss / float64(n))

	return read.SetCalibration(strand, shift, scale, drift, varr)
}
