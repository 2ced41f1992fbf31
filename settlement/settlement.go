/*
Package settlement computes the full-and-final payout for an exiting
employee from a list of credit/debit line items.

PURPOSE:
  A settlement starts as a Draft built from line items; the net amount is
  a pure fold over the items (credits add, debits subtract, neutral items
  contribute nothing but stay visible for disclosure). Finalize moves
  Draft -> Paid, which is terminal: items and net amount are frozen and a
  second finalize is rejected rather than silently repeated, so a double
  payout cannot slip through.

STATE MACHINE:
  Draft --Finalize--> Paid (terminal, no reverse transition)

PRECISION:
  Amounts are decimal.Decimal. Money never goes through floats.

ELIGIBILITY:
  Whether the employee is actually in the Exited lifecycle state is owned
  by the store shell, which consults the employee directory before
  finalizing; see the ledger package.
*/
package settlement

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
	// ErrAlreadyFinalized is returned when finalizing a Paid settlement.
	ErrAlreadyFinalized = errors.New("settlement already finalized")

	// ErrNegativeAmount is returned for a line item with a negative
	// amount; direction is expressed by Kind, not by sign.
	ErrNegativeAmount = errors.New("line item amount must be non-negative")
)

// AlreadyFinalizedError carries the payout that was already made.
type AlreadyFinalizedError struct {
	PaidAt    time.Time
	NetAmount decimal.Decimal
}

func (e *AlreadyFinalizedError) Error() string {
	return fmt.Sprintf("settlement already paid on %s (net %s)",
		e.PaidAt.Format("2006-01-02"), e.NetAmount)
}

func (e *AlreadyFinalizedError) Unwrap() error { return ErrAlreadyFinalized }

// =============================================================================
// LINE ITEMS
// =============================================================================

type Kind string

const (
	KindCredit  Kind = "credit"
	KindDebit   Kind = "debit"
	KindNeutral Kind = "neutral" // disclosed but excluded from the net
)

// LineItem is a single monetary entry in the settlement. Amount is
// always non-negative; Kind decides whether it adds, subtracts, or is
// informational only.
type LineItem struct {
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	Description string          `json:"description"`
}

// =============================================================================
// SETTLEMENT
// =============================================================================

type SettlementStatus string

const (
	StatusDraft SettlementStatus = "draft"
	StatusPaid  SettlementStatus = "paid"
)

// Settlement is the full-and-final computation for one exiting employee.
type Settlement struct {
	Items     []LineItem       `json:"items"`
	NetAmount decimal.Decimal  `json:"netAmount"`
	Status    SettlementStatus `json:"status"`
	PaidAt    time.Time        `json:"paidAt"` // zero until Paid
}

// Draft builds a settlement in Draft status with the net amount computed.
// Rejects negative line item amounts.
func Draft(items []LineItem) (*Settlement, error) {
	for _, item := range items {
		if item.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: %s is %s", ErrNegativeAmount, item.Label, item.Amount)
		}
	}

	copied := make([]LineItem, len(items))
	copy(copied, items)

	return &Settlement{
		Items:     copied,
		NetAmount: Net(copied),
		Status:    StatusDraft,
	}, nil
}

// Net folds the line items into the payable amount: credits add, debits
// subtract, neutral items contribute zero.
func Net(items []LineItem) decimal.Decimal {
	net := decimal.Zero
	for _, item := range items {
		switch item.Kind {
		case KindCredit:
			net = net.Add(item.Amount)
		case KindDebit:
			net = net.Sub(item.Amount)
		}
	}
	return net
}

// Finalize transitions Draft -> Paid. Calling it on a Paid settlement
// fails with AlreadyFinalizedError and mutates nothing.
func (s *Settlement) Finalize(now time.Time) error {
	if s.Status == StatusPaid {
		return &AlreadyFinalizedError{PaidAt: s.PaidAt, NetAmount: s.NetAmount}
	}
	s.Status = StatusPaid
	s.PaidAt = now
	return nil
}

// Frozen reports whether the settlement admits no further changes.
func (s *Settlement) Frozen() bool {
	return s.Status == StatusPaid
}

// View returns a copy safe to hand to the rendering layer.
func (s *Settlement) View() Settlement {
	out := *s
	out.Items = make([]LineItem, len(s.Items))
	copy(out.Items, s.Items)
	return out
}
