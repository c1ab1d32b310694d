package squiggle

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadManifest reads a file-of-filenames: one read file path per line.
// Blank lines and lines starting with '#' are skipped. Relative paths are
// resolved against the manifest's directory.
func LoadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return paths, nil
}

// LoadRead parses a squiggle text dump. The format is section-based:
//
//	@name r1                      optional, defaults to the file basename
//	@sequence
//	ACGTACGT...
//	@events template              one event per line: mean stdv duration start
//	102.1	1.9	0.0021	0.000
//	@map template                 one mapping per line: pos start stop
//	0	0	0
//	1	1	2
//
// Positions absent from a @map section are unmapped. Fields are
// tab-separated.
func LoadRead(path string) (*Read, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open read file: %w", err)
	}
	defer f.Close()

	read := &Read{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}

	const (
		secNone = iota
		secSequence
		secEvents
		secMap
	)
	section := secNone
	var strand Strand
	// raw per-strand map entries, sized once the sequence is known
	type mapEntry struct {
		strand Strand
		pos    int
		rng    EventRange
	}
	var mapEntries []mapEntry

	lineno := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "@") {
			fields := strings.Fields(line)
			switch fields[0] {
			case "@name":
				if len(fields) != 2 {
					return nil, fmt.Errorf("%s:%d: @name takes one argument", path, lineno)
				}
				read.Name = fields[1]
				section = secNone
			case "@sequence":
				section = secSequence
			case "@events", "@map":
				if len(fields) != 2 {
					return nil, fmt.Errorf("%s:%d: %s needs a strand", path, lineno, fields[0])
				}
				strand, err = ParseStrand(fields[1])
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %w", path, lineno, err)
				}
				if fields[0] == "@events" {
					section = secEvents
				} else {
					section = secMap
				}
			default:
				return nil, fmt.Errorf("%s:%d: unknown section %q", path, lineno, fields[0])
			}
			continue
		}

		switch section {
		case secSequence:
			read.Sequence += line
		case secEvents:
			fields := strings.Split(line, "\t")
			if len(fields) != 4 {
				return nil, fmt.Errorf("%s:%d: event needs 4 fields, got %d", path, lineno, len(fields))
			}
			var ev Event
			for i, dst := range []*float64{&ev.Mean, &ev.Stdv, &ev.Duration, &ev.Start} {
				*dst, err = strconv.ParseFloat(fields[i], 64)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: bad event field %d: %w", path, lineno, i, err)
				}
			}
			read.Events[strand] = append(read.Events[strand], ev)
		case secMap:
			fields := strings.Split(line, "\t")
			if len(fields) != 3 {
				return nil, fmt.Errorf("%s:%d: map entry needs 3 fields, got %d", path, lineno, len(fields))
			}
			var nums [3]int
			for i := range fields {
				nums[i], err = strconv.Atoi(fields[i])
				if err != nil {
					return nil, fmt.Errorf("%s:%d: bad map field %d: %w", path, lineno, i, err)
				}
			}
			mapEntries = append(mapEntries, mapEntry{
				strand: strand,
				pos:    nums[0],
				rng:    EventRange{Start: nums[1], Stop: nums[2]},
			})
		default:
			return nil, fmt.Errorf("%s:%d: data outside any section", path, lineno)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if read.Sequence == "" {
		return nil, fmt.Errorf("%s: missing @sequence section", path)
	}

	for s := 0; s < NumStrands; s++ {
		read.EventMap[s] = make([]EventRange, len(read.Sequence))
		for i := range read.EventMap[s] {
			read.EventMap[s][i] = UnsetEventRange
		}
	}
	for _, e := range mapEntries {
		if e.pos < 0 || e.pos >= len(read.Sequence) {
			return nil, fmt.Errorf("%s: map position %d outside sequence of length %d", path, e.pos, len(read.Sequence))
		}
		if !e.rng.Unset() {
			if n := len(read.Events[e.strand]); e.rng.Start < 0 || e.rng.Stop >= n || e.rng.Start > e.rng.Stop {
				return nil, fmt.Errorf("%s: map at position %d references events [%d,%d] outside %d events", path, e.pos, e.rng.Start, e.rng.Stop, n)
			}
		}
		read.EventMap[e.strand][e.pos] = e.rng
	}
	return read, nil
}
