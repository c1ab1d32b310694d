package train

import (
	"fmt"
	"log"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/squiggle-data/pore.train/internal/align"
	"github.com/squiggle-data/pore.train/internal/alphabet"
	"github.com/squiggle-data/pore.train/internal/diag"
	"github.com/squiggle-data/pore.train/internal/model"
	"github.com/squiggle-data/pore.train/internal/recal"
	"github.com/squiggle-data/pore.train/internal/squiggle"
)

// Pipeline runs the full training sequence over a set of loaded reads:
// per-read alignment and collection, baseline selection, model estimation
// and baking, baseline application, then per-read recalibration.
type Pipeline struct {
	Alphabet alphabet.Alphabet
	K        int
	Strand   squiggle.Strand
	FitDrift bool
	Verbose  bool

	// Diagnostics receives per-sample rows during collection when set.
	Diagnostics *diag.TSVWriter
}

// ReadReport summarises one read after recalibration.
type ReadReport struct {
	Name    string
	Events  int
	Aligned int
	Shift   float64
	Scale   float64
	Drift   float64
	Var     float64
}

// Result is the outcome of a training run.
type Result struct {
	Model         *model.PoreModel
	Usable        []bool
	BaselineIndex int
	Reads         []ReadReport
}

// Run executes the pipeline. The phases are strictly ordered: every
// read's training set is collected before the baseline is selected, and
// the baked baseline model is applied to every read before any read is
// recalibrated.
func (p *Pipeline) Run(reads []*squiggle.Read) (*Result, error) {
	if len(reads) == 0 {
		return nil, fmt.Errorf("no reads to train on")
	}

	// Phase 1: per-read alignment and training-sample collection.
	sets := make([]*KmerTrainingSet, len(reads))
	for i, read := range reads {
		alignment, err := align.GenerateAlignment(read, p.Alphabet, p.K, p.Strand, nil)
		if err != nil {
			return nil, fmt.Errorf("aligning read %d: %w", i, err)
		}
		set, err := CollectTrainingData(read, alignment, p.Alphabet, p.K, read.ModelVar(p.Strand))
		if err != nil {
			return nil, fmt.Errorf("collecting read %d: %w", i, err)
		}
		sets[i] = set

		if p.Diagnostics != nil {
			for _, ea := range alignment {
				ev := read.Events[ea.Strand][ea.EventIndex]
				if err := p.Diagnostics.WriteSample(i, ea.Kmer, ev.Mean, ev.Duration); err != nil {
					return nil, fmt.Errorf("writing diagnostics for read %d: %w", i, err)
				}
			}
		}
	}

	// Phase 2: baseline selection.
	baseline, totals := SelectBaselineRead(sets)
	for i, total := range totals {
		log.Printf("read %d has %d events (baseline: read %d)", i, total, baseline)
	}

	// Phase 3: estimation and baking.
	m, usable := EstimateModel(sets[baseline], p.Alphabet, p.K)
	m.BakeGaussianParameters()
	p.logModelSummary(m, usable, sets[baseline])

	// Phase 4: apply the baseline model to every read, then recalibrate
	// each read independently.
	for _, read := range reads {
		read.ApplyBaselineModel(p.Strand, m)
	}

	result := &Result{Model: m, Usable: usable, BaselineIndex: baseline, Reads: make([]ReadReport, len(reads))}
	for i, read := range reads {
		alignment, err := align.GenerateAlignment(read, p.Alphabet, p.K, p.Strand, usable)
		if err != nil {
			return nil, fmt.Errorf("realigning read %d: %w", i, err)
		}
		if err := recal.RecalibrateRead(read, p.Strand, alignment, p.Alphabet, p.FitDrift); err != nil {
			return nil, fmt.Errorf("recalibrating read %d: %w", i, err)
		}

		rm := read.Model(p.Strand)
		result.Reads[i] = ReadReport{
			Name:    read.Name,
			Events:  len(read.Events[p.Strand]),
			Aligned: len(alignment),
			Shift:   rm.Shift,
			Scale:   rm.Scale,
			Drift:   rm.Drift,
			Var:     rm.Var,
		}
		log.Printf("[recalibration] read %d events: %d alignment: %d shift: %.2f scale: %.2f drift: %.4f var: %.2f",
			i, result.Reads[i].Events, result.Reads[i].Aligned, rm.Shift, rm.Scale, rm.Drift, rm.Var)
	}
	return result, nil
}

// logModelSummary reports the fitted medians: per k-mer when verbose, and
// an aggregate over the usable states either way.
func (p *Pipeline) logModelSummary(m *model.PoreModel, usable []bool, set *KmerTrainingSet) {
	var levels []float64
	for ki, u := range usable {
		if !u {
			continue
		}
		levels = append(levels, m.States[ki].LevelMean)
		if p.Verbose {
			log.Printf("k-mer %d median: %.2f (%d samples)", ki, m.States[ki].LevelMean, len(set.Samples[ki]))
		}
	}
	if len(levels) == 0 {
		log.Printf("model: no usable k-mers fitted")
		return
	}
	mean, stdv := stat.MeanStdDev(levels, nil)
	log.Printf("model: %d/%d k-mers fitted, levels %.2f-%.2f pA, mean %.2f stdv %.2f",
		len(levels), len(usable), floats.Min(levels), floats.Max(levels), mean, stdv)
}
