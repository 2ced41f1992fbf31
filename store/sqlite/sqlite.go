/*
Package sqlite provides the SQLite-backed durable store for the work
ledger.

PURPOSE:
  Implements ledger.Repository (whole-snapshot persistence) and
  ledger.Directory (employee lifecycle) on a single SQLite file.

PERSISTENCE SHAPE:
  The work ledger is a per-employee key-value snapshot: the full
  aggregate is serialized as JSON and written after each mutation, and
  loaded in one pass at startup. No per-record tables; the engines own
  the structure, the store owns durability.

KEY TABLES:
  work_ledgers:  employee_id -> snapshot_json (one row per employee)
  employees:     directory records with lifecycle status

CONCURRENCY:
  sync.RWMutex on top of SQLite opened in WAL mode. The service is
  single-writer; the mutex keeps directory reads consistent with writes.

USAGE:
  store, err := sqlite.New("./data/workledger.db")
  svc := ledger.NewService(store, store, nil)
  svc.Rehydrate(ctx)

SEE ALSO:
  - ledger: Repository and Directory contracts
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/work-ledger/ledger"
)

// Store implements ledger.Repository and ledger.Directory using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ ledger.Repository = (*Store)(nil)
var _ ledger.Directory = (*Store)(nil)

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

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

func (s *Store) migrate() error {
	schema := `
	-- Work ledger snapshots (one row per employee, replaced on each write)
	CREATE TABLE IF NOT EXISTS work_ledgers (
		employee_id TEXT PRIMARY KEY,
		snapshot_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Employee directory (lifecycle status gates settlements)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		hire_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_status ON employees(status);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REPOSITORY (ledger.Repository interface)
// =============================================================================

// Load returns every persisted work ledger, keyed by employee id.
func (s *Store) Load(ctx context.Context) (map[string]*ledger.WorkLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id, snapshot_json FROM work_ledgers`)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*ledger.WorkLedger)
	for rows.Next() {
		var employeeID, raw string
		if err := rows.Scan(&employeeID, &raw); err != nil {
			return nil, err
		}
		var led ledger.WorkLedger
		if err := json.Unmarshal([]byte(raw), &led); err != nil {
			return nil, fmt.Errorf("corrupt snapshot for %s: %w", employeeID, err)
		}
		out[employeeID] = &led
	}
	return out, rows.Err()
}

// Save replaces the employee's snapshot.
func (s *Store) Save(ctx context.Context, employeeID string, led *ledger.WorkLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(led)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO work_ledgers (employee_id, snapshot_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			snapshot_json = excluded.snapshot_json,
			updated_at = excluded.updated_at
	`, employeeID, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// =============================================================================
// EMPLOYEE DIRECTORY (ledger.Directory interface + admin surface)
// =============================================================================

// CreateEmployee inserts a directory record. New employees start Active.
func (s *Store) CreateEmployee(ctx context.Context, e ledger.Employee) (ledger.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Status == "" {
		e.Status = ledger.StatusActive
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, status, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Name, e.Email, string(e.Status),
		e.HireDate.Format("2006-01-02"), e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return ledger.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return e, nil
}

// GetEmployee returns one directory record.
func (s *Store) GetEmployee(ctx context.Context, employeeID string) (ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, status, hire_date, created_at
		FROM employees WHERE id = ?
	`, employeeID)
	return scanEmployee(row)
}

// ListEmployees returns all directory records, oldest first.
func (s *Store) ListEmployees(ctx context.Context) ([]ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, status, hire_date, created_at
		FROM employees ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []ledger.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkExited flips an employee to the Exited lifecycle state.
func (s *Store) MarkExited(ctx context.Context, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE employees SET status = ? WHERE id = ?`,
		string(ledger.StatusExited), employeeID)
	if err != nil {
		return fmt.Errorf("failed to mark exited: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ledger.ErrEmployeeNotFound
	}
	return nil
}

// Status returns the employee's lifecycle classification.
func (s *Store) Status(ctx context.Context, employeeID string) (ledger.LifecycleStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM employees WHERE id = ?`, employeeID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", ledger.ErrEmployeeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status: %w", err)
	}
	return ledger.LifecycleStatus(status), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (ledger.Employee, error) {
	var (
		e                 ledger.Employee
		status            string
		hireDate, created string
	)
	err := row.Scan(&e.ID, &e.Name, &e.Email, &status, &hireDate, &created)
	if err == sql.ErrNoRows {
		return ledger.Employee{}, ledger.ErrEmployeeNotFound
	}
	if err != nil {
		return ledger.Employee{}, fmt.Errorf("failed to scan employee: %w", err)
	}

	e.Status = ledger.LifecycleStatus(status)
	e.HireDate, _ = time.Parse("2006-01-02", hireDate)
	e.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return e, nil
}
