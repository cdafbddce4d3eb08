/*
Package sqlite provides a SQLite-backed implementation of the history store.

PURPOSE:
  Implements generic.Store using SQLite so computed payslips survive a
  restart and can be listed or re-displayed later. Calculations are pure;
  nothing in the engine reads this data back to compute a new payslip.

INTERFACES IMPLEMENTED:
  generic.Store: Calculation history

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on calculations
  - DELETE only by age, from the retention pruner

KEY TABLES:
  calculations: One row per computed payslip, money stored as decimal text
  prune_runs:   Audit of retention pruner executions

CONCURRENCY:
  Uses sync.RWMutex plus a single connection. SQLite allows one writer,
  and ":memory:" databases exist per connection.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - generic/store.go: Interface definition
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

// Fixed-width UTC layout so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements generic.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Calculations (append-only history)
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		regime TEXT NOT NULL,
		gross TEXT NOT NULL,
		dependents INTEGER NOT NULL DEFAULT 0,
		standard_deduction INTEGER NOT NULL DEFAULT 0,
		rate TEXT,
		contribution TEXT NOT NULL,
		withholding TEXT NOT NULL,
		net TEXT NOT NULL,
		legend TEXT NOT NULL,
		report TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calculations_created_at
		ON calculations(created_at);
	CREATE INDEX IF NOT EXISTS idx_calculations_competence
		ON calculations(year, month);

	-- Retention pruner audit
	CREATE TABLE IF NOT EXISTS prune_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_at TEXT NOT NULL,
		cutoff TEXT NOT NULL,
		deleted INTEGER NOT NULL,
		error TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CALCULATIONS
// =============================================================================

const calculationColumns = `id, created_at, year, month, regime, gross, dependents, standard_deduction,
	rate, contribution, withholding, net, legend, report`

// Save persists a calculation.
func (s *Store) Save(ctx context.Context, c generic.Calculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rate sql.NullString
	if c.Rate.Valid {
		rate = sql.NullString{String: c.Rate.Decimal.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calculations (`+calculationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CreatedAt.UTC().Format(timeLayout), c.Competence.Year, int(c.Competence.Month),
		c.Regime, c.Gross.String(), c.Dependents, c.StandardDeduction,
		rate, c.Contribution.String(), c.Withholding.String(), c.Net.String(),
		c.Legend, c.Report,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("calculation %s already exists: %w", c.ID, err)
		}
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

// Get retrieves a calculation by ID.
func (s *Store) Get(ctx context.Context, id string) (generic.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+calculationColumns+` FROM calculations WHERE id = ?`, id)
	c, err := scanCalculation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return generic.Calculation{}, generic.ErrCalculationNotFound
	}
	return c, err
}

// List returns the most recent calculations first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]generic.Calculation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+calculationColumns+` FROM calculations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calcs []generic.Calculation
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, c)
	}
	return calcs, rows.Err()
}

// DeleteBefore removes calculations created before t.
func (s *Store) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM calculations WHERE created_at < ?", t.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCalculation(row scanner) (generic.Calculation, error) {
	var c generic.Calculation
	var createdAt, gross, contrib, irrf, net string
	var month int
	var rate sql.NullString

	err := row.Scan(&c.ID, &createdAt, &c.Competence.Year, &month, &c.Regime, &gross,
		&c.Dependents, &c.StandardDeduction, &rate, &contrib, &irrf, &net, &c.Legend, &c.Report)
	if err != nil {
		return generic.Calculation{}, err
	}

	c.Competence.Month = time.Month(month)
	c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	c.Gross = generic.MustParseDecimal(gross)
	c.Contribution = generic.MustParseDecimal(contrib)
	c.Withholding = generic.MustParseDecimal(irrf)
	c.Net = generic.MustParseDecimal(net)
	if rate.Valid {
		c.Rate = decimal.NewNullDecimal(generic.MustParseDecimal(rate.String))
	}
	return c, nil
}

// =============================================================================
// PRUNE RUNS
// =============================================================================

// PruneRun records one execution of the retention pruner.
type PruneRun struct {
	ID      int64
	RunAt   time.Time
	Cutoff  time.Time
	Deleted int64
	Error   string
}

// SavePruneRun records a pruner execution.
func (s *Store) SavePruneRun(ctx context.Context, r PruneRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO prune_runs (run_at, cutoff, deleted, error) VALUES (?, ?, ?, ?)",
		r.RunAt.UTC().Format(timeLayout), r.Cutoff.UTC().Format(timeLayout), r.Deleted, nullString(r.Error),
	)
	return err
}

// ListPruneRuns returns the most recent pruner executions first.
func (s *Store) ListPruneRuns(ctx context.Context, limit int) ([]PruneRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_at, cutoff, deleted, error FROM prune_runs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []PruneRun
	for rows.Next() {
		var r PruneRun
		var runAt, cutoff string
		var errStr sql.NullString
		if err := rows.Scan(&r.ID, &runAt, &cutoff, &r.Deleted, &errStr); err != nil {
			return nil, err
		}
		r.RunAt, _ = time.Parse(timeLayout, runAt)
		r.Cutoff, _ = time.Parse(timeLayout, cutoff)
		r.Error = errStr.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Reset clears all data. Used by tests and demo scenarios.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM calculations; DELETE FROM prune_runs;")
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ generic.Store = (*Store)(nil)
