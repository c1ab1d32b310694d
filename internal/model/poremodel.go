// Package model holds the pore model: the fitted mapping from k-mer rank to
// expected signal level, plus the global scaling parameters that adapt the
// model to an individual read.
package model

import "math"

const logSqrt2Pi = 0.9189385332046727

// KmerState is the fitted emission distribution for one k-mer.
// A zero KmerState means the k-mer was never observed during training and
// must not be used for scoring.
type KmerState struct {
	LevelMean float64
	LevelStdv float64
}

// GaussianParameters are the baked, read-scaled form of a KmerState used by
// scoring and recalibration: mean and stdv after applying shift/scale/var,
// with the stdv log precomputed.
type GaussianParameters struct {
	Mean    float64
	Stdv    float64
	LogStdv float64
}

// PoreModel maps k-mer ranks to expected signal characteristics.
// States are shared across reads after training; Shift, Scale, Drift and
// Var start as the identity transform and diverge per read after
// recalibration.
type PoreModel struct {
	K      int
	States []KmerState

	Shift   float64
	Scale   float64
	Drift   float64
	Var     float64
	ScaleSd float64
	VarSd   float64

	// ScaledParams is populated by BakeGaussianParameters and is only
	// valid until the next change to States or the scaling parameters.
	ScaledParams []GaussianParameters
}

// New returns a model for k-mers of length k with room for numKmers states
// and identity scaling parameters.
func New(k, numKmers int) *PoreModel {
	return &PoreModel{
		K:       k,
		States:  make([]KmerState, numKmers),
		Shift:   0.0,
		Scale:   1.0,
		Drift:   0.0,
		Var:     1.0,
		ScaleSd: 1.0,
		VarSd:   1.0,
	}
}

// Clone returns a deep copy of the model. Each read gets its own copy so
// recalibration of one read cannot disturb another.
func (m *PoreModel) Clone() *PoreModel {
	out := *m
	out.States = append([]KmerState(nil), m.States...)
	out.ScaledParams = append([]GaussianParameters(nil), m.ScaledParams...)
	return &out
}

// SetScaling replaces the global scaling parameters and rebakes the scaled
// per-k-mer parameters so they stay consistent.
func (m *PoreModel) SetScaling(shift, scale, drift, varr float64) {
	m.Shift = shift
	m.Scale = scale
	m.Drift = drift
	m.Var = varr
	m.BakeGaussianParameters()
}

// BakeGaussianParameters precomputes the read-scaled emission parameters
// for every k-mer state. It is a pure function of States and the scaling
// parameters, so re-invoking it without intervening changes produces
// identical output. Must be called after the states are finalised and
// again after any scaling change.
func (m *PoreModel) BakeGaussianParameters() {
	if len(m.ScaledParams) != len(m.States) {
		m.ScaledParams = make([]GaussianParameters, len(m.States))
	}
	for i, s := range m.States {
		sm := s.LevelMean*m.Scale + m.Shift
		sd := s.LevelStdv * m.Var
		var logStdv float64
		if sd > 0 {
			logStdv = math.Log(sd)
		}
		m.ScaledParams[i] = GaussianParameters{Mean: sm, Stdv: sd, LogStdv: logStdv}
	}
}

// LogProbability returns the log density of an observed event level under
// the baked distribution for the k-mer at rank ki.
func (m *PoreModel) LogProbability(ki int, level float64) float64 {
	p := m.ScaledParams[ki]
	if p.Stdv <= 0 {
		return math.Inf(-1)
	}
	z := (level - p.Mean) / p.Stdv
	return -0.5*z*z - p.LogStdv - logSqrt2Pi
}
