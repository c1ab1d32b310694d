// Package modeldb persists training runs — the fitted per-k-mer model and
// each read's recalibrated parameters — in a sqlite database so runs can
// be compared later.
package modeldb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/squiggle-data/pore.train/internal/model"
	"github.com/squiggle-data/pore.train/internal/train"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the run database at path and applies
// any pending schema migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run database: %w", err)
	}
	db := &DB{sqlDB}
	if err := db.migrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) migrateUp() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to init migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	// Note: m is not closed because that would close the underlying DB
	// connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// SaveRun stores a completed training result and returns the generated
// run ID.
func (db *DB) SaveRun(res *train.Result, k int, strand string) (string, error) {
	runID := uuid.NewString()

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, k, strand, baseline_read, num_kmers) VALUES (?, ?, ?, ?, ?)`,
		runID, k, strand, res.BaselineIndex, len(res.Model.States),
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stateStmt, err := tx.Prepare(
		`INSERT INTO model_states (run_id, kmer_rank, level_mean, level_stdv, usable) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare state insert: %w", err)
	}
	defer stateStmt.Close()
	for ki, s := range res.Model.States {
		if _, err := stateStmt.Exec(runID, ki, s.LevelMean, s.LevelStdv, res.Usable[ki]); err != nil {
			return "", fmt.Errorf("failed to insert state %d: %w", ki, err)
		}
	}

	readStmt, err := tx.Prepare(
		`INSERT INTO read_calibrations (run_id, read_idx, read_name, events, aligned, shift, scale, drift, var)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare read insert: %w", err)
	}
	defer readStmt.Close()
	for i, r := range res.Reads {
		if _, err := readStmt.Exec(runID, i, r.Name, r.Events, r.Aligned, r.Shift, r.Scale, r.Drift, r.Var); err != nil {
			return "", fmt.Errorf("failed to insert read %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// LoadModel reconstructs a stored model and its usable-k-mer mask.
// The scaling parameters come back as the identity transform; per-read
// calibrations live in read_calibrations.
func (db *DB) LoadModel(runID string) (*model.PoreModel, []bool, error) {
	var k, numKmers int
	err := db.QueryRow(`SELECT k, num_kmers FROM runs WHERE run_id = ?`, runID).Scan(&k, &numKmers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	m := model.New(k, numKmers)
	usable := make([]bool, numKmers)

	rows, err := db.Query(
		`SELECT kmer_rank, level_mean, level_stdv, usable FROM model_states WHERE run_id = ? ORDER BY kmer_rank`, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load states for %s: %w", runID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ki int
		var mean, stdv float64
		var u bool
		if err := rows.Scan(&ki, &mean, &stdv, &u); err != nil {
			return nil, nil, fmt.Errorf("failed to scan state: %w", err)
		}
		if ki < 0 || ki >= numKmers {
			return nil, nil, fmt.Errorf("run %s: state rank %d outside %d k-mers", runID, ki, numKmers)
		}
		m.States[ki] = model.KmerState{LevelMean: mean, LevelStdv: stdv}
		usable[ki] = u
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read states: %w", err)
	}

	m.BakeGaussianParameters()
	return m, usable, nil
}

// ReadCalibrations returns the per-read recalibration reports for a run,
// in read order.
func (db *DB) ReadCalibrations(runID string) ([]train.ReadReport, error) {
	rows, err := db.Query(
		`SELECT read_name, events, aligned, shift, scale, drift, var
		 FROM read_calibrations WHERE run_id = ? ORDER BY read_idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load calibrations for %s: %w", runID, err)
	}
	defer rows.Close()

	var reports []train.ReadReport
	for rows.Next() {
		var r train.ReadReport
		if err := rows.Scan(&r.Name, &r.Events, &r.Aligned, &r.Shift, &r.Scale, &r.Drift, &r.Var); err != nil {
			return nil, fmt.Errorf("failed to scan calibration: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read calibrations: %w", err)
	}
	return reports, nil
}
