/*
Package ledger is the durable container for the personal work ledger:
one aggregate per employee holding the attendance ledger, the leave
ledger, and (for exiting employees) the settlement.

PURPOSE:
  The Service here is the single owner of all mutable state. Every
  mutation in the system funnels through its methods, which scope the
  sub-engines per employee, apply the pure state transition, and then
  write the whole snapshot through to the Repository.

PERSISTENCE MODEL:
  Load the entire snapshot once at startup (Rehydrate), write the
  employee's snapshot after each successful mutation. The write-through
  is not awaited by callers in the UI sense: a persistence failure is
  logged, not surfaced, and the in-memory state remains authoritative
  for the session. Last write wins on rehydration across sessions.

COLLABORATORS:
  - Repository: durable key-value snapshot store (store/sqlite in
    production, store/memory in tests)
  - Directory: employee lifecycle classification (Active/Exited), owned
    outside this core; settlements are gated on it

SEE ALSO:
  - attendance, leave, settlement: the pure sub-engines
  - service.go: the operations
*/
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/work-ledger/attendance"
	"github.com/warp/work-ledger/leave"
	"github.com/warp/work-ledger/settlement"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmployeeNotEligible is returned when a settlement operation is
	// attempted for an employee who has not exited.
	ErrEmployeeNotEligible = errors.New("employee not eligible for settlement")

	// ErrNoSettlement is returned when finalizing before any draft exists.
	ErrNoSettlement = errors.New("no settlement drafted")
)

// EmployeeNotEligibleError carries the employee's actual lifecycle state.
type EmployeeNotEligibleError struct {
	EmployeeID string
	Status     LifecycleStatus
}

func (e *EmployeeNotEligibleError) Error() string {
	return fmt.Sprintf("employee %s is %s, settlement requires %s",
		e.EmployeeID, e.Status, StatusExited)
}

func (e *EmployeeNotEligibleError) Unwrap() error { return ErrEmployeeNotEligible }

// =============================================================================
// WORK LEDGER - Per-employee aggregate
// =============================================================================

// WorkLedger is everything the system tracks for one employee. It is the
// unit of persistence: the Repository stores one snapshot per employee.
type WorkLedger struct {
	EmployeeID string             `json:"employeeId"`
	Attendance *attendance.Ledger `json:"attendance"`
	Leave      *leave.Ledger      `json:"leave"`
	Settlement *settlement.Settlement `json:"settlement,omitempty"` // nil until drafted
}

// DefaultEntitlements seeds leave balances for a newly tracked employee.
// The HR admin surface can override these per employee later.
var DefaultEntitlements = map[leave.Type]decimal.Decimal{
	leave.TypeCasual: decimal.NewFromInt(12),
	leave.TypeSick:   decimal.NewFromInt(8),
	leave.TypeEarned: decimal.NewFromInt(15),
}

// NewWorkLedger creates an empty aggregate with the given entitlements.
func NewWorkLedger(employeeID string, entitlements map[leave.Type]decimal.Decimal) *WorkLedger {
	if entitlements == nil {
		entitlements = DefaultEntitlements
	}
	return &WorkLedger{
		EmployeeID: employeeID,
		Attendance: attendance.NewLedger(),
		Leave:      leave.NewLedger(entitlements),
	}
}

// =============================================================================
// REPOSITORY - Durable snapshot persistence
// =============================================================================

// Repository is the durable key-value boundary: whole snapshots in,
// whole snapshots out. Implementations must be safe for the
// single-writer access pattern of Service.
type Repository interface {
	// Load returns every persisted work ledger, keyed by employee id.
	Load(ctx context.Context) (map[string]*WorkLedger, error)

	// Save persists one employee's snapshot, replacing any previous one.
	Save(ctx context.Context, employeeID string, led *WorkLedger) error
}

// =============================================================================
// DIRECTORY - External lifecycle collaborator
// =============================================================================

type LifecycleStatus string

const (
	StatusActive LifecycleStatus = "active"
	StatusExited LifecycleStatus = "exited"
)

// Directory supplies the employee lifecycle classification. It is owned
// outside this core; the ledger only consults it to gate settlements.
type Directory interface {
	Status(ctx context.Context, employeeID string) (LifecycleStatus, error)
}

// ErrEmployeeNotFound is returned by directory implementations for an
// unknown employee id.
var ErrEmployeeNotFound = errors.New("employee not found")

// Employee is the directory record for one person. The work ledger core
// reads only Status; the rest exists for the admin surface.
type Employee struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Status    LifecycleStatus `json:"status"`
	HireDate  time.Time       `json:"hireDate"`
	CreatedAt time.Time       `json:"createdAt"`
}
