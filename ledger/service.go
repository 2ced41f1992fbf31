/*
service.go - Single-owner work ledger service

PURPOSE:
  All mutation funnels through Service: it locates (or lazily creates)
  the employee's aggregate, applies the sub-engine transition, and writes
  the snapshot through to the repository. Construct isolated instances in
  tests; there is no package-level singleton.

ATOMICITY:
  One mutex guards all operations, so a check-in and check-out for the
  same day can never interleave partial updates. Readers get copies, not
  references into live state.

CLOCK:
  Wall-clock time is injected: every time-sensitive operation takes the
  current instant as a parameter.
*/
package ledger

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/work-ledger/attendance"
	"github.com/warp/work-ledger/leave"
	"github.com/warp/work-ledger/settlement"
)

// Service owns the authoritative work ledger collection.
type Service struct {
	mu           sync.Mutex
	repo         Repository
	directory    Directory
	entitlements map[leave.Type]decimal.Decimal
	ledgers      map[string]*WorkLedger
}

// NewService creates a service persisting through repo and consulting
// directory for lifecycle status. Pass nil entitlements to use
// DefaultEntitlements for newly tracked employees.
func NewService(repo Repository, directory Directory, entitlements map[leave.Type]decimal.Decimal) *Service {
	if entitlements == nil {
		entitlements = DefaultEntitlements
	}
	return &Service{
		repo:         repo,
		directory:    directory,
		entitlements: entitlements,
		ledgers:      make(map[string]*WorkLedger),
	}
}

// Rehydrate replaces in-memory state with the persisted snapshot. Call
// once at startup before serving operations.
func (s *Service) Rehydrate(ctx context.Context) error {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgers = make(map[string]*WorkLedger, len(loaded))
	for id, led := range loaded {
		s.ledgers[id] = led
	}
	return nil
}

// ledgerFor returns the employee's aggregate, creating it on first use.
// Caller must hold s.mu.
func (s *Service) ledgerFor(employeeID string) *WorkLedger {
	if led, ok := s.ledgers[employeeID]; ok {
		return led
	}
	led := NewWorkLedger(employeeID, s.entitlements)
	s.ledgers[employeeID] = led
	return led
}

// persist writes the snapshot through. Failures are logged, not
// surfaced: the in-memory state stays authoritative for the session.
func (s *Service) persist(ctx context.Context, led *WorkLedger) {
	if err := s.repo.Save(ctx, led.EmployeeID, led); err != nil {
		log.Printf("work-ledger: persist snapshot for %s: %v", led.EmployeeID, err)
	}
}

// =============================================================================
// ATTENDANCE OPERATIONS
// =============================================================================

// CheckIn records a check-in for the employee at the given instant.
// Repeating it the same day overwrites the start time.
func (s *Service) CheckIn(ctx context.Context, employeeID string, now time.Time) (attendance.DayLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	led := s.ledgerFor(employeeID)
	dayLog := led.Attendance.CheckIn(now)
	s.persist(ctx, led)
	return dayLog, nil
}

// CheckOut closes the employee's open session. With no open session it
// returns (nil, nil) and changes nothing.
func (s *Service) CheckOut(ctx context.Context, employeeID string, now time.Time) (*attendance.DayLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	led := s.ledgerFor(employeeID)
	dayLog, err := led.Attendance.CheckOut(now)
	if err != nil {
		return nil, err
	}
	if dayLog == nil {
		return nil, nil
	}
	s.persist(ctx, led)
	out := *dayLog
	return &out, nil
}

// MarkAbsent records an absence for a date with no attendance activity.
func (s *Service) MarkAbsent(ctx context.Context, employeeID, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	led := s.ledgerFor(employeeID)
	led.Attendance.MarkAbsent(date)
	s.persist(ctx, led)
	return nil
}

// =============================================================================
// LEAVE OPERATIONS
// =============================================================================

// ApplyLeave records a new Pending leave request.
func (s *Service) ApplyLeave(ctx context.Context, employeeID string, in leave.ApplyInput, now time.Time) (leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	led := s.ledgerFor(employeeID)
	req, err := led.Leave.Apply(in, now)
	if err != nil {
		return leave.Request{}, err
	}
	s.persist(ctx, led)
	return req, nil
}

// CancelLeave cancels a Pending request on behalf of the requester.
func (s *Service) CancelLeave(ctx context.Context, employeeID, requestID string) (leave.Request, error) {
	return s.leaveTransition(ctx, employeeID, requestID, (*leave.Ledger).Cancel)
}

// ApproveLeave is the approval collaborator's entry point: it consumes
// balance through the guard and flips the request to Approved.
func (s *Service) ApproveLeave(ctx context.Context, employeeID, requestID string) (leave.Request, error) {
	return s.leaveTransition(ctx, employeeID, requestID, (*leave.Ledger).Approve)
}

// RejectLeave flips a Pending request to Rejected.
func (s *Service) RejectLeave(ctx context.Context, employeeID, requestID string) (leave.Request, error) {
	return s.leaveTransition(ctx, employeeID, requestID, (*leave.Ledger).Reject)
}

func (s *Service) leaveTransition(ctx context.Context, employeeID, requestID string,
	op func(*leave.Ledger, string) (leave.Request, error)) (leave.Request, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	led := s.ledgerFor(employeeID)
	req, err := op(led.Leave, requestID)
	if err != nil {
		return leave.Request{}, err
	}
	s.persist(ctx, led)
	return req, nil
}

// CanConsumeLeave exposes the balance guard for external approval
// workflows that manage their own transitions.
func (s *Service) CanConsumeLeave(employeeID string, leaveType leave.Type, days decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerFor(employeeID).Leave.CanConsume(leaveType, days)
}

// =============================================================================
// SETTLEMENT OPERATIONS
// =============================================================================

// DraftSettlement builds (or rebuilds) the employee's settlement draft.
// Only exited employees are eligible, and a paid settlement is frozen:
// re-drafting it is rejected.
func (s *Service) DraftSettlement(ctx context.Context, employeeID string, items []settlement.LineItem) (settlement.Settlement, error) {
	if err := s.requireExited(ctx, employeeID); err != nil {
		return settlement.Settlement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	led := s.ledgerFor(employeeID)
	if led.Settlement != nil && led.Settlement.Frozen() {
		return settlement.Settlement{}, &settlement.AlreadyFinalizedError{
			PaidAt:    led.Settlement.PaidAt,
			NetAmount: led.Settlement.NetAmount,
		}
	}

	draft, err := settlement.Draft(items)
	if err != nil {
		return settlement.Settlement{}, err
	}
	led.Settlement = draft
	s.persist(ctx, led)
	return draft.View(), nil
}

// FinalizeSettlement transitions the draft to Paid. The second call for
// the same employee fails with AlreadyFinalizedError and mutates nothing.
func (s *Service) FinalizeSettlement(ctx context.Context, employeeID string, now time.Time) (settlement.Settlement, error) {
	if err := s.requireExited(ctx, employeeID); err != nil {
		return settlement.Settlement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	led := s.ledgerFor(employeeID)
	if led.Settlement == nil {
		return settlement.Settlement{}, ErrNoSettlement
	}
	if err := led.Settlement.Finalize(now); err != nil {
		return settlement.Settlement{}, err
	}
	s.persist(ctx, led)
	return led.Settlement.View(), nil
}

func (s *Service) requireExited(ctx context.Context, employeeID string) error {
	status, err := s.directory.Status(ctx, employeeID)
	if err != nil {
		return err
	}
	if status != StatusExited {
		return &EmployeeNotEligibleError{EmployeeID: employeeID, Status: status}
	}
	return nil
}

// =============================================================================
// READ-ONLY PROJECTIONS
// =============================================================================
// Projections never create ledger state and always return copies.

// AttendanceHistory returns the employee's logs, newest first.
func (s *Service) AttendanceHistory(employeeID string) []attendance.DayLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	if led, ok := s.ledgers[employeeID]; ok {
		return led.Attendance.History()
	}
	return nil
}

// CurrentSession returns the employee's transient check-in state.
func (s *Service) CurrentSession(employeeID string) attendance.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if led, ok := s.ledgers[employeeID]; ok {
		return led.Attendance.Session
	}
	return attendance.Session{}
}

// LeaveBalances returns the employee's per-type balances.
func (s *Service) LeaveBalances(employeeID string) map[leave.Type]leave.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()

	if led, ok := s.ledgers[employeeID]; ok {
		return led.Leave.AllBalances()
	}
	return map[leave.Type]leave.Balance{}
}

// LeaveRequests returns the employee's requests, newest first.
func (s *Service) LeaveRequests(employeeID string) []leave.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	if led, ok := s.ledgers[employeeID]; ok {
		return led.Leave.AllRequests()
	}
	return nil
}

// SettlementFor returns a copy of the employee's settlement, if drafted.
func (s *Service) SettlementFor(employeeID string) (settlement.Settlement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if led, ok := s.ledgers[employeeID]; ok && led.Settlement != nil {
		return led.Settlement.View(), true
	}
	return settlement.Settlement{}, false
}
