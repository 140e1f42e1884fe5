// Package history keeps one row per generated report in a SQLite database
// so coverage can be followed over time.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrInvalidLimit is returned by List for a negative limit.
var ErrInvalidLimit = errors.New("limit must not be negative")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp        INTEGER NOT NULL,
	version          TEXT    NOT NULL,
	report_path      TEXT    NOT NULL,
	line_rate        REAL    NOT NULL,
	branch_rate      REAL    NOT NULL,
	lines_covered    INTEGER NOT NULL,
	lines_valid      INTEGER NOT NULL,
	branches_covered INTEGER NOT NULL,
	branches_valid   INTEGER NOT NULL,
	complexity       REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
`

// Run is the summary of one generated report.
type Run struct {
	ID              int64
	Timestamp       time.Time
	Version         string
	ReportPath      string
	LineRate        float64
	BranchRate      float64
	LinesCovered    int
	LinesValid      int
	BranchesCovered int
	BranchesValid   int
	Complexity      float64
}

// Store is a history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and makes sure the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema in %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file name.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores run and returns its id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (timestamp, version, report_path, line_rate, branch_rate,
			lines_covered, lines_valid, branches_covered, branches_valid, complexity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Timestamp.UnixMilli(), run.Version, run.ReportPath, run.LineRate, run.BranchRate,
		run.LinesCovered, run.LinesValid, run.BranchesCovered, run.BranchesValid, run.Complexity)
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	return id, nil
}

// List returns the most recent runs first. A limit of 0 returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit < 0 {
		return nil, ErrInvalidLimit
	}
	query := `
		SELECT id, timestamp, version, report_path, line_rate, branch_rate,
			lines_covered, lines_valid, branches_covered, branches_valid, complexity
		FROM runs ORDER BY timestamp DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.Version, &r.ReportPath, &r.LineRate, &r.BranchRate,
			&r.LinesCovered, &r.LinesValid, &r.BranchesCovered, &r.BranchesValid, &r.Complexity); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Timestamp = time.UnixMilli(ts)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
