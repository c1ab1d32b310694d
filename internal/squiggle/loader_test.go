package squiggle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := writeFile(t, dir, "reads.fofn", "r1.squiggle\n\n# a comment\nr2.squiggle\n/abs/r3.squiggle\n")

	got, err := LoadManifest(manifest)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	want := []string{
		filepath.Join(dir, "r1.squiggle"),
		filepath.Join(dir, "r2.squiggle"),
		"/abs/r3.squiggle",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("manifest paths mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRead(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "r1.squiggle", `@name read-001
@sequence
ACGTA
CGT
@events template
100.5	1.2	0.002	0.000
98.0	0.9	0.003	0.002
102.2	1.1	0.001	0.005
@map template
0	0	0
1	1	1
2	1	2
`)

	read, err := LoadRead(path)
	if err != nil {
		t.Fatalf("LoadRead: %v", err)
	}

	if read.Name != "read-001" {
		t.Errorf("Name = %q, want read-001", read.Name)
	}
	if read.Sequence != "ACGTACGT" {
		t.Errorf("Sequence = %q, want ACGTACGT (multi-line join)", read.Sequence)
	}
	if len(read.Events[Template]) != 3 {
		t.Fatalf("len(template events) = %d, want 3", len(read.Events[Template]))
	}
	if got := read.Events[Template][1]; got.Mean != 98.0 || got.Stdv != 0.9 || got.Duration != 0.003 {
		t.Errorf("event 1 = %+v", got)
	}

	if got := read.EventRangeFor(Template, 0); !got.Single() || got.Start != 0 {
		t.Errorf("range at 0 = %+v, want single event 0", got)
	}
	if got := read.EventRangeFor(Template, 2); got.Single() {
		t.Errorf("range at 2 = %+v, want multi-event", got)
	}
	if got := read.EventRangeFor(Template, 3); !got.Unset() {
		t.Errorf("range at 3 = %+v, want unset", got)
	}
	// positions past the sequence are unmapped, not a panic
	if got := read.EventRangeFor(Template, 100); !got.Unset() {
		t.Errorf("range at 100 = %+v, want unset", got)
	}
	// the complement strand was never mapped
	if got := read.EventRangeFor(Complement, 0); !got.Unset() {
		t.Errorf("complement range at 0 = %+v, want unset", got)
	}
}

func TestLoadReadDefaultsNameFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "r7.squiggle", "@sequence\nACGT\n")

	read, err := LoadRead(path)
	if err != nil {
		t.Fatalf("LoadRead: %v", err)
	}
	if read.Name != "r7" {
		t.Errorf("Name = %q, want r7", read.Name)
	}
}

func TestLoadReadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"missing sequence", "@events template\n1.0\t1.0\t1.0\t0.0\n"},
		{"data outside section", "100.0\t1.0\t0.002\t0.0\n"},
		{"bad section", "@bogus\n"},
		{"events without strand", "@sequence\nACGT\n@events\n"},
		{"bad strand", "@sequence\nACGT\n@events sideways\n"},
		{"short event row", "@sequence\nACGT\n@events template\n1.0\t2.0\n"},
		{"map position out of range", "@sequence\nACGT\n@events template\n1.0\t1.0\t1.0\t0.0\n@map template\n9	0	0\n"},
		{"map event out of range", "@sequence\nACGT\n@events template\n1.0\t1.0\t1.0\t0.0\n@map template\n0	0	5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "bad.squiggle", tt.content)
			if _, err := LoadRead(path); err == nil {
				t.Errorf("LoadRead accepted %s", tt.name)
			}
		})
	}
}
