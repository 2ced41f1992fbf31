/*
ledger.go - Per-employee leave ledger

PURPOSE:
  Owns leave-type balances and the request list for one employee.
  Applying for leave only records a Pending request; balances are touched
  exclusively by the approval collaborator, which must route its decrement
  through the CanConsume guard exposed here.

LIFECYCLE:
  Pending --cancel (requester)--> Cancelled
  Pending --approve (collaborator)--> Approved  (consumes balance)
  Pending --reject (collaborator)--> Rejected

  Approved, Rejected and Cancelled are terminal; any transition attempt
  out of them fails with InvalidStateTransitionError and leaves the
  request unchanged.

BALANCE INVARIANT:
  0 <= Consumed <= Total. Consume refuses to cross the ceiling with
  InsufficientLeaveBalanceError; Approve is just guard + decrement +
  status flip, performed only if the guard passes.

SEE ALSO:
  - types.go: Balance, Request, status enum
  - ledger (store shell): scopes this per employee and persists it
*/
package leave

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidLeaveRange is returned when days < 1 or end precedes start.
	ErrInvalidLeaveRange = errors.New("invalid leave range")

	// ErrInvalidStateTransition is returned when a request is not in a
	// state that admits the attempted transition.
	ErrInvalidStateTransition = errors.New("invalid request state transition")

	// ErrInsufficientBalance is returned when a consumption would drive
	// Consumed above Total.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrRequestNotFound is returned when a request id is unknown.
	ErrRequestNotFound = errors.New("leave request not found")
)

// InvalidLeaveRangeError carries the rejected range.
type InvalidLeaveRangeError struct {
	StartDate string
	EndDate   string
	Days      decimal.Decimal
}

func (e *InvalidLeaveRangeError) Error() string {
	return fmt.Sprintf("invalid leave range: %s to %s (%s days)",
		e.StartDate, e.EndDate, e.Days)
}

func (e *InvalidLeaveRangeError) Unwrap() error { return ErrInvalidLeaveRange }

// InvalidStateTransitionError carries the request and the state it was in.
type InvalidStateTransitionError struct {
	RequestID string
	From      RequestStatus
	To        RequestStatus
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("request %s: cannot transition %s -> %s", e.RequestID, e.From, e.To)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }

// InsufficientLeaveBalanceError carries the shortfall details.
type InsufficientLeaveBalanceError struct {
	LeaveType Type
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientLeaveBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s leave: available %s, requested %s",
		e.LeaveType, e.Available, e.Requested)
}

func (e *InsufficientLeaveBalanceError) Unwrap() error { return ErrInsufficientBalance }

// =============================================================================
// LEDGER
// =============================================================================

// Ledger holds one employee's leave state. Plain data for JSON
// snapshots; mutate only through the methods below.
type Ledger struct {
	Balances map[Type]Balance `json:"balances"`
	Requests []Request        `json:"requests"` // newest first
}

// NewLedger returns a leave ledger seeded with the given entitlements.
func NewLedger(entitlements map[Type]decimal.Decimal) *Ledger {
	balances := make(map[Type]Balance, len(entitlements))
	for lt, total := range entitlements {
		balances[lt] = Balance{Total: total, Consumed: decimal.Zero}
	}
	return &Ledger{Balances: balances}
}

// Apply records a new Pending request. Balances are NOT decremented here;
// that happens on approval. Validates days >= 1 and end >= start.
func (l *Ledger) Apply(in ApplyInput, now time.Time) (Request, error) {
	if in.Days.LessThan(decimal.NewFromInt(1)) || in.EndDate < in.StartDate {
		return Request{}, &InvalidLeaveRangeError{
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			Days:      in.Days,
		}
	}

	req := Request{
		ID:        fmt.Sprintf("leave-%d", now.UnixNano()),
		LeaveType: in.LeaveType,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Days:      in.Days,
		Reason:    in.Reason,
		Status:    StatusPending,
		AppliedOn: now,
	}

	l.Requests = append([]Request{req}, l.Requests...)
	return req, nil
}

// Cancel moves a Pending request to Cancelled. Terminal requests are
// immutable: cancelling them fails with InvalidStateTransitionError.
func (l *Ledger) Cancel(requestID string) (Request, error) {
	return l.transition(requestID, StatusCancelled, nil)
}

// Approve moves a Pending request to Approved and consumes its days from
// the matching balance. The consumption goes through the CanConsume
// guard; on guard failure the request stays Pending and balances are
// untouched.
func (l *Ledger) Approve(requestID string) (Request, error) {
	return l.transition(requestID, StatusApproved, func(req *Request) error {
		return l.Consume(req.LeaveType, req.Days)
	})
}

// Reject moves a Pending request to Rejected. Balances are untouched.
func (l *Ledger) Reject(requestID string) (Request, error) {
	return l.transition(requestID, StatusRejected, nil)
}

func (l *Ledger) transition(requestID string, to RequestStatus, effect func(*Request) error) (Request, error) {
	idx := -1
	for i := range l.Requests {
		if l.Requests[i].ID == requestID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Request{}, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}

	req := &l.Requests[idx]
	if req.Status.terminal() {
		return Request{}, &InvalidStateTransitionError{
			RequestID: requestID,
			From:      req.Status,
			To:        to,
		}
	}

	if effect != nil {
		if err := effect(req); err != nil {
			return Request{}, err
		}
	}

	req.Status = to
	return *req, nil
}

// =============================================================================
// BALANCE GUARD - Reusable by the approval collaborator
// =============================================================================

// CanConsume checks whether taking the given days of a leave type would
// keep Consumed within Total. It is the single guard for every balance
// decrement, inside or outside this package.
func (l *Ledger) CanConsume(leaveType Type, days decimal.Decimal) error {
	balance := l.Balances[leaveType]
	if balance.Consumed.Add(days).GreaterThan(balance.Total) {
		return &InsufficientLeaveBalanceError{
			LeaveType: leaveType,
			Available: balance.Available(),
			Requested: days,
		}
	}
	return nil
}

// Consume decrements available balance (increments Consumed) after the
// guard passes. Unpaid leave has no entitlement to track, so a zero-total
// balance for TypeUnpaid is consumed freely.
func (l *Ledger) Consume(leaveType Type, days decimal.Decimal) error {
	if leaveType == TypeUnpaid {
		return nil
	}
	if err := l.CanConsume(leaveType, days); err != nil {
		return err
	}
	balance := l.Balances[leaveType]
	balance.Consumed = balance.Consumed.Add(days)
	l.Balances[leaveType] = balance
	return nil
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// RequestByID returns a copy of the matching request.
func (l *Ledger) RequestByID(requestID string) (Request, bool) {
	for _, req := range l.Requests {
		if req.ID == requestID {
			return req, true
		}
	}
	return Request{}, false
}

// AllRequests returns a copy of the request list, newest first.
func (l *Ledger) AllRequests() []Request {
	out := make([]Request, len(l.Requests))
	copy(out, l.Requests)
	return out
}

// AllBalances returns a copy of the balance map.
func (l *Ledger) AllBalances() map[Type]Balance {
	out := make(map[Type]Balance, len(l.Balances))
	for lt, b := range l.Balances {
		out[lt] = b
	}
	return out
}
