package align

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/squiggle-data/pore.train/internal/alphabet"
	"github.com/squiggle-data/pore.train/internal/squiggle"
)

// testRead builds a template-strand read where position i maps to the
// given event range. Events are synthesised one per range index.
func testRead(seq string, ranges map[int]squiggle.EventRange) *squiggle.Read {
	r := &squiggle.Read{Name: "test", Sequence: seq}
	maxEvent := 0
	r.EventMap[squiggle.Template] = make([]squiggle.EventRange, len(seq))
	for i := range r.EventMap[squiggle.Template] {
		r.EventMap[squiggle.Template][i] = squiggle.UnsetEventRange
	}
	for pos, rng := range ranges {
		r.EventMap[squiggle.Template][pos] = rng
		if !rng.Unset() && rng.Stop > maxEvent {
			maxEvent = rng.Stop
		}
	}
	for i := 0; i <= maxEvent; i++ {
		r.Events[squiggle.Template] = append(r.Events[squiggle.Template], squiggle.Event{
			Mean: 90 + float64(i), Stdv: 1, Duration: 0.002, Start: float64(i) * 0.002,
		})
	}
	return r
}

func single(i int) squiggle.EventRange { return squiggle.EventRange{Start: i, Stop: i} }

func TestGenerateAlignmentSkipsGapsAndMerges(t *testing.T) {
	// pos 0: single event; pos 1: unset; pos 2: multi-event; pos 3: single
	read := testRead("ACGTA", map[int]squiggle.EventRange{
		0: single(0),
		2: {Start: 1, Stop: 3},
		3: single(4),
	})

	got, err := GenerateAlignment(read, alphabet.DNA, 2, squiggle.Template, nil)
	if err != nil {
		t.Fatalf("GenerateAlignment: %v", err)
	}

	want := []Entry{
		{Kmer: "AC", RefPosition: 0, Strand: squiggle.Template, EventIndex: 0, State: 'M'},
		{Kmer: "TA", RefPosition: 3, Strand: squiggle.Template, EventIndex: 4, State: 'M'},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateAlignmentOrdered(t *testing.T) {
	ranges := map[int]squiggle.EventRange{}
	for i := 0; i < 7; i++ {
		ranges[i] = single(i)
	}
	read := testRead("ACGTACGT", ranges)

	got, err := GenerateAlignment(read, alphabet.DNA, 2, squiggle.Template, nil)
	if err != nil {
		t.Fatalf("GenerateAlignment: %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("len(alignment) = %d, want 7", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].RefPosition <= got[i-1].RefPosition {
			t.Fatalf("entries out of order at %d: %d then %d", i, got[i-1].RefPosition, got[i].RefPosition)
		}
	}
}

func TestGenerateAlignmentUsableMask(t *testing.T) {
	ranges := map[int]squiggle.EventRange{}
	for i := 0; i < 7; i++ {
		ranges[i] = single(i)
	}
	read := testRead("ACGTACGT", ranges)

	// only "CG" (rank 6) is usable
	usable := make([]bool, alphabet.DNA.NumKmers(2))
	usable[6] = true

	got, err := GenerateAlignment(read, alphabet.DNA, 2, squiggle.Template, usable)
	if err != nil {
		t.Fatalf("GenerateAlignment: %v", err)
	}
	for _, ea := range got {
		if ea.Kmer != "CG" {
			t.Errorf("masked alignment contains %q, only CG is usable", ea.Kmer)
		}
	}
	if len(got) != 2 {
		t.Errorf("len(alignment) = %d, want the 2 CG positions", len(got))
	}
}

func TestGenerateAlignmentBadSequence(t *testing.T) {
	read := testRead("ACNTA", map[int]squiggle.EventRange{1: single(0)})

	_, err := GenerateAlignment(read, alphabet.DNA, 2, squiggle.Template, nil)
	if err == nil {
		t.Fatal("GenerateAlignment accepted a non-DNA base")
	}
	if !errors.Is(err, ErrKmerRank) {
		t.Errorf("error = %v, want ErrKmerRank", err)
	}
}

func TestGenerateAlignmentShortSequence(t *testing.T) {
	read := &squiggle.Read{Name: "short", Sequence: "AC"}
	got, err := GenerateAlignment(read, alphabet.DNA, 5, squiggle.Template, nil)
	if err != nil {
		t.Fatalf("GenerateAlignment: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(alignment) = %d, want 0 for sequence shorter than k", len(got))
	}
}

func TestGenerateAlignmentAllMultiEvent(t *testing.T) {
	read := testRead("ACGTA", map[int]squiggle.EventRange{
		0: {Start: 0, Stop: 1},
		1: {Start: 1, Stop: 2},
		2: {Start: 2, Stop: 4},
		3: {Start: 4, Stop: 5},
	})

	got, err := GenerateAlignment(read, alphabet.DNA, 2, squiggle.Template, nil)
	if err != nil {
		t.Fatalf("GenerateAlignment: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len(alignment) = %d, want 0 when every position is multi-event", len(got))
	}
}
