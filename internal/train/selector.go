package train

// SelectBaselineRead picks the read whose training set contributes the
// most aligned events and returns its index along with the per-read event
// totals. A read with more confidently aligned events yields denser
// per-k-mer statistics for model initialisation.
//
// The scan is stable: a later read must have a strictly greater total to
// displace an earlier one, so ties go to the first read in input order.
// With no sets the index is -1.
func SelectBaselineRead(sets []*KmerTrainingSet) (int, []int) {
	best := -1
	maxEvents := 0
	totals := make([]int, len(sets))
	for i, set := range sets {
		totals[i] = set.TotalSamples()
		if best == -1 || totals[i] > maxEvents {
			maxEvents = totals[i]
			best = i
		}
	}
	return best, totals
}
