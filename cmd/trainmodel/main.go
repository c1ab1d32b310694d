// Command trainmodel trains a new pore model from basecalled reads.
//
// Usage: trainmodel [OPTIONS] reads.fofn
//
// The manifest lists one squiggle read file per line. The trained model
// and the per-read recalibration parameters are reported on the log and
// optionally persisted to a sqlite run database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/squiggle-data/pore.train/internal/alphabet"
	"github.com/squiggle-data/pore.train/internal/diag"
	"github.com/squiggle-data/pore.train/internal/modeldb"
	"github.com/squiggle-data/pore.train/internal/squiggle"
	"github.com/squiggle-data/pore.train/internal/train"
)

const version = "0.2.0"

var (
	verbose     = flag.Bool("v", false, "display verbose output")
	showVersion = flag.Bool("version", false, "display version and exit")
	kmerLen     = flag.Int("k", 5, "basecalled k-mer length")
	strandName  = flag.String("strand", "template", "strand to train on (template or complement)")
	fitDrift    = flag.Bool("drift", false, "fit a drift term during recalibration")
	dbPath      = flag.String("db", "", "sqlite run database to store the trained model in")
	tsvPath     = flag.String("tsv", "trainmodel.tsv", "diagnostics TSV output path")
	tsvRows     = flag.Bool("tsv-rows", true, "write per-sample rows to the diagnostics TSV")
	plotPath    = flag.String("plot", "", "save a per-k-mer fitted level plot to this path")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [OPTIONS] reads.fofn\n", os.Args[0])
	fmt.Fprintln(flag.CommandLine.Output(), "Train a new pore model using the basecalled reads listed in reads.fofn.")
	fmt.Fprintln(flag.CommandLine.Output(), "\nOptions:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("trainmodel %s\n", version)
		return
	}
	if flag.NArg() != 1 {
		if flag.NArg() == 0 {
			fmt.Fprintln(os.Stderr, "trainmodel: not enough arguments")
		} else {
			fmt.Fprintln(os.Stderr, "trainmodel: too many arguments")
		}
		usage()
		os.Exit(2)
	}

	strand, err := squiggle.ParseStrand(*strandName)
	if err != nil {
		log.Fatalf("trainmodel: %v", err)
	}

	// The single fatal exit sits here so run's defers (diagnostics flush,
	// db close) always unwind first.
	if err := run(flag.Arg(0), strand); err != nil {
		log.Fatalf("trainmodel: %v", err)
	}
}

func run(manifest string, strand squiggle.Strand) (err error) {
	reads, err := loadReads(manifest)
	if err != nil {
		return err
	}

	pipeline := &train.Pipeline{
		Alphabet: alphabet.DNA,
		K:        *kmerLen,
		Strand:   strand,
		FitDrift: *fitDrift,
		Verbose:  *verbose,
	}

	if *tsvPath != "" {
		tsv, terr := diag.NewTSVWriter(*tsvPath, *tsvRows)
		if terr != nil {
			return terr
		}
		defer func() {
			if cerr := tsv.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing diagnostics: %w", cerr)
			}
		}()
		pipeline.Diagnostics = tsv
	}

	result, err := pipeline.Run(reads)
	if err != nil {
		return err
	}

	if *plotPath != "" {
		if err := diag.PlotModelLevels(result.Model, result.Usable, *plotPath); err != nil {
			return err
		}
		log.Printf("wrote model plot to %s", *plotPath)
	}

	if *dbPath != "" {
		db, err := modeldb.Open(*dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		runID, err := db.SaveRun(result, *kmerLen, strand.String())
		if err != nil {
			return err
		}
		log.Printf("stored run %s in %s", runID, *dbPath)
	}
	return nil
}

func loadReads(manifest string) ([]*squiggle.Read, error) {
	paths, err := squiggle.LoadManifest(manifest)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("manifest %s lists no reads", manifest)
	}

	reads := make([]*squiggle.Read, 0, len(paths))
	for _, path := range paths {
		log.Printf("Loading %s", path)
		read, err := squiggle.LoadRead(path)
		if err != nil {
			return nil, err
		}
		reads = append(reads, read)
	}
	log.Printf("Loaded %d reads", len(reads))
	return reads, nil
}
