package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/stochlab/internal/stochastic"

	_ "modernc.org/sqlite" // SQLite driver.
)

// IndexFile is the name of the run index inside a data directory.
const IndexFile = "index.db"

// fixed width so recorded_at sorts lexically
const indexTimeLayout = "2006-01-02T15:04:05.000000000Z"

// Index is a SQLite table of run summaries. It answers cross-run questions
// (how far do estimates sit from theory) without reading every run
// directory.
type Index struct {
	db *sql.DB
}

// IndexedRun is one row of the index.
type IndexedRun struct {
	ID       string
	Mode     stochastic.Mode
	Recorded time.Time
	Seed     int64
	Rate     float64
	Duration float64
	Events   int
	Expected float64
	Observed float64
}

// ModeSummary aggregates all indexed runs of one mode.
type ModeSummary struct {
	Mode        stochastic.Mode
	Runs        int
	Events      int
	MeanAbsErr  float64
	MaxAbsErr   float64
	LastUpdated time.Time
}

// RunFilter narrows Recent. A nil Mode matches every mode; Limit <= 0 means
// no limit.
type RunFilter struct {
	Mode  *stochastic.Mode
	Limit int
}

// OpenIndex opens or creates the index database and applies migrations.
func OpenIndex(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	ix := &Index{db: db}
	if err := ix.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate index: %w", err)
	}
	return ix, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			seed INTEGER NOT NULL,
			rate REAL NOT NULL,
			dt REAL NOT NULL,
			duration REAL NOT NULL,
			steps INTEGER NOT NULL,
			events INTEGER NOT NULL,
			expected REAL NOT NULL,
			observed REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode, recorded_at);`,
	}
	for _, stmt := range stmts {
		if _, err := ix.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record stores the summary of a saved run. Recording the same run ID
// again replaces the row.
func (ix *Index) Record(ctx context.Context, meta RunMetadata, expected, observed float64) error {
	_, err := ix.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, mode, recorded_at, seed, rate, dt, duration, steps, events, expected, observed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID,
		meta.Mode.String(),
		meta.Timestamp.UTC().Format(indexTimeLayout),
		meta.Seed,
		meta.Rate,
		meta.Dt,
		meta.Duration,
		meta.Steps,
		meta.Events,
		expected,
		observed,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", meta.ID, err)
	}
	return nil
}

// Recent returns indexed runs, newest first.
func (ix *Index) Recent(ctx context.Context, filter RunFilter) ([]IndexedRun, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Mode != nil {
		clauses = append(clauses, "mode = ?")
		args = append(args, filter.Mode.String())
	}
	query := fmt.Sprintf(`SELECT id, mode, recorded_at, seed, rate, duration, events, expected, observed
		FROM runs
		WHERE %s
		ORDER BY recorded_at DESC`, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := ix.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []IndexedRun
	for rows.Next() {
		var run IndexedRun
		var mode, recorded string
		if err := rows.Scan(&run.ID, &mode, &recorded, &run.Seed, &run.Rate, &run.Duration, &run.Events, &run.Expected, &run.Observed); err != nil {
			return nil, err
		}
		if run.Mode, err = stochastic.ParseMode(mode); err != nil {
			return nil, err
		}
		if run.Recorded, err = time.Parse(indexTimeLayout, recorded); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Summaries aggregates the index per mode, in mode order. Modes without
// runs are left out.
func (ix *Index) Summaries(ctx context.Context) ([]ModeSummary, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT mode, COUNT(*), SUM(events), AVG(ABS(observed - expected)), MAX(ABS(observed - expected)), MAX(recorded_at)
		 FROM runs
		 GROUP BY mode`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMode := make(map[stochastic.Mode]ModeSummary)
	for rows.Next() {
		var sum ModeSummary
		var mode, last string
		if err := rows.Scan(&mode, &sum.Runs, &sum.Events, &sum.MeanAbsErr, &sum.MaxAbsErr, &last); err != nil {
			return nil, err
		}
		if sum.Mode, err = stochastic.ParseMode(mode); err != nil {
			return nil, err
		}
		if sum.LastUpdated, err = time.Parse(indexTimeLayout, last); err != nil {
			return nil, err
		}
		byMode[sum.Mode] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summaries := make([]ModeSummary, 0, len(byMode))
	for _, m := range stochastic.Modes {
		if sum, ok := byMode[m]; ok {
			summaries = append(summaries, sum)
		}
	}
	return summaries, nil
}
