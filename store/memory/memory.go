// Package memory provides in-memory implementations of the work ledger
// Repository and Directory, for tests and development.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/warp/work-ledger/ledger"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Store keeps snapshots as encoded JSON, the same shape the durable
// store persists. The round-trip through JSON also guarantees the
// repository never shares pointers with the service's live state.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	employees map[string]ledger.Employee

	// SaveErr, when set, is returned by Save. Lets tests exercise the
	// write-through failure path.
	SaveErr error
}

func New() *Store {
	return &Store{
		snapshots: make(map[string][]byte),
		employees: make(map[string]ledger.Employee),
	}
}

var _ ledger.Repository = (*Store)(nil)
var _ ledger.Directory = (*Store)(nil)

// =============================================================================
// REPOSITORY
// =============================================================================

func (s *Store) Load(_ context.Context) (map[string]*ledger.WorkLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*ledger.WorkLedger, len(s.snapshots))
	for id, raw := range s.snapshots {
		var led ledger.WorkLedger
		if err := json.Unmarshal(raw, &led); err != nil {
			return nil, err
		}
		out[id] = &led
	}
	return out, nil
}

func (s *Store) Save(_ context.Context, employeeID string, led *ledger.WorkLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	raw, err := json.Marshal(led)
	if err != nil {
		return err
	}
	s.snapshots[employeeID] = raw
	return nil
}

// SaveCount reports how many snapshots are currently held.
func (s *Store) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) CreateEmployee(_ context.Context, e ledger.Employee) (ledger.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Status == "" {
		e.Status = ledger.StatusActive
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.employees[e.ID] = e
	return e, nil
}

func (s *Store) GetEmployee(_ context.Context, employeeID string) (ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[employeeID]
	if !ok {
		return ledger.Employee{}, ledger.ErrEmployeeNotFound
	}
	return e, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]ledger.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		out = append(out, e)
	}
	return out, nil
}

// MarkExited flips an employee to the Exited lifecycle state.
func (s *Store) MarkExited(_ context.Context, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.employees[employeeID]
	if !ok {
		return ledger.ErrEmployeeNotFound
	}
	e.Status = ledger.StatusExited
	s.employees[employeeID] = e
	return nil
}

func (s *Store) Status(_ context.Context, employeeID string) (ledger.LifecycleStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.employees[employeeID]
	if !ok {
		return "", ledger.ErrEmployeeNotFound
	}
	return e.Status, nil
}
