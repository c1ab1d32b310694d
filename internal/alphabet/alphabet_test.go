package alphabet

import "testing"

func TestDNAKmerRank(t *testing.T) {
	tests := []struct {
		kmer string
		want int
	}{
		{"A", 0},
		{"C", 1},
		{"G", 2},
		{"T", 3},
		{"AA", 0},
		{"AC", 1},
		{"CA", 4},
		{"TT", 15},
		{"acgt", 27}, // lowercase accepted
		{"AAAAA", 0},
		{"TTTTT", 1023},
		{"GATTA", 572},
	}

	for _, tt := range tests {
		t.Run(tt.kmer, func(t *testing.T) {
			got, err := DNA.KmerRank(tt.kmer)
			if err != nil {
				t.Fatalf("KmerRank(%q) returned error: %v", tt.kmer, err)
			}
			if got != tt.want {
				t.Errorf("KmerRank(%q) = %d, want %d", tt.kmer, got, tt.want)
			}
		})
	}
}

func TestDNAKmerRankInvalidBase(t *testing.T) {
	for _, kmer := range []string{"ACGN", "X", "AC-T"} {
		if _, err := DNA.KmerRank(kmer); err == nil {
			t.Errorf("KmerRank(%q) = nil error, want non-DNA base error", kmer)
		}
	}
}

func TestDNANumKmers(t *testing.T) {
	tests := []struct {
		k    int
		want int
	}{
		{0, 1},
		{1, 4},
		{2, 16},
		{5, 1024},
		{6, 4096},
	}
	for _, tt := range tests {
		if got := DNA.NumKmers(tt.k); got != tt.want {
			t.Errorf("NumKmers(%d) = %d, want %d", tt.k, got, tt.want)
		}
	}
	if DNA.Size() != 4 {
		t.Errorf("Size() = %d, want 4", DNA.Size())
	}
}
