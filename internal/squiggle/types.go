// Package squiggle models a basecalled nanopore read: the called sequence,
// the segmented raw-signal events for each strand, and the basecaller's
// mapping from k-mer positions to events.
package squiggle

import (
	"fmt"

	"github.com/squiggle-data/pore.train/internal/model"
)

// Strand selects one of the two pore passes of a 2D read.
type Strand int

const (
	Template Strand = iota
	Complement

	// NumStrands sizes per-strand arrays.
	NumStrands = 2
)

func (s Strand) String() string {
	switch s {
	case Template:
		return "template"
	case Complement:
		return "complement"
	}
	return fmt.Sprintf("strand(%d)", int(s))
}

// ParseStrand converts the textual strand names used in squiggle files and
// on the command line.
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "template", "t":
		return Template, nil
	case "complement", "c":
		return Complement, nil
	}
	return 0, fmt.Errorf("unknown strand %q", s)
}

// Event is one segment of raw signal, summarised by the segmenter.
// Start and Duration are in seconds from the start of the read.
type Event struct {
	Mean     float64
	Stdv     float64
	Duration float64
	Start    float64
}

// EventRange is the half-open run of events the basecaller assigned to one
// k-mer position. Start == -1 means no event was assigned (a basecaller
// gap); Start != Stop means the position spans several merged events.
type EventRange struct {
	Start int
	Stop  int
}

// UnsetEventRange marks a position with no event assignment.
var UnsetEventRange = EventRange{Start: -1, Stop: -1}

// Unset reports whether no event was assigned to the position.
func (r EventRange) Unset() bool { return r.Start == -1 }

// Single reports whether the range covers exactly one event.
func (r EventRange) Single() bool { return !r.Unset() && r.Start == r.Stop }

// ModelPhase tracks where a read's per-strand model is in the training
// lifecycle. Recalibration is only valid once the baseline model has been
// assigned.
type ModelPhase int

const (
	ModelUnset ModelPhase = iota
	ModelBaseline
	ModelCalibrated
)

func (p ModelPhase) String() string {
	switch p {
	case ModelUnset:
		return "unset"
	case ModelBaseline:
		return "baseline"
	case ModelCalibrated:
		return "calibrated"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Read is a basecalled read with its raw-signal events. The training core
// never constructs reads directly; they come from LoadRead or from test
// fixtures.
type Read struct {
	Name     string
	Sequence string

	// Events holds the segmented signal per strand.
	Events [NumStrands][]Event

	// EventMap[strand][pos] is the event range the basecaller assigned to
	// the k-mer starting at pos. Positions beyond the slice are unmapped.
	EventMap [NumStrands][]EventRange

	models [NumStrands]*model.PoreModel
	phases [NumStrands]ModelPhase
}

// EventRangeFor returns the event range for a k-mer position, or the unset
// range when the basecaller produced no mapping there.
func (r *Read) EventRangeFor(strand Strand, pos int) EventRange {
	m := r.EventMap[strand]
	if pos < 0 || pos >= len(m) {
		return UnsetEventRange
	}
	return m[pos]
}

// Model returns the read's current per-strand model, nil before a baseline
// model has been applied.
func (r *Read) Model(strand Strand) *model.PoreModel { return r.models[strand] }

// Phase returns the model lifecycle phase for a strand.
func (r *Read) Phase(strand Strand) ModelPhase { return r.phases[strand] }

// ModelVar returns the read's current model variance, or 1.0 before any
// model has been assigned. Training-sample collection records this value,
// so before the first fit it is a defined default rather than a measured
// quantity.
func (r *Read) ModelVar(strand Strand) float64 {
	if r.models[strand] == nil {
		return 1.0
	}
	return r.models[strand].Var
}

// ApplyBaselineModel gives the read its own copy of the fitted baseline
// model and moves the strand to the baseline phase.
func (r *Read) ApplyBaselineModel(strand Strand, m *model.PoreModel) {
	r.models[strand] = m.Clone()
	r.phases[strand] = ModelBaseline
}

// SetCalibration installs per-read scaling parameters. It is only valid
// after ApplyBaselineModel and before any previous calibration, enforcing
// the baseline-then-recalibrate ordering.
func (r *Read) SetCalibration(strand Strand, shift, scale, drift, varr float64) error {
	if r.phases[strand] != ModelBaseline {
		return fmt.Errorf("read %s %s strand: cannot calibrate from phase %s", r.Name, strand, r.phases[strand])
	}
	r.models[strand].SetScaling(shift, scale, drift, varr)
	r.phases[strand] = ModelCalibrated
	return nil
}
