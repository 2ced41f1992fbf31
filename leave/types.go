// Package leave implements the per-employee leave ledger: typed leave
// balances and the leave request lifecycle.
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEAVE TYPES
// =============================================================================

type Type string

const (
	TypeCasual    Type = "casual"
	TypeSick      Type = "sick"
	TypeEarned    Type = "earned"
	TypeUnpaid    Type = "unpaid"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
)

// =============================================================================
// BALANCE - Entitlement vs consumption per leave type
// =============================================================================

// Balance tracks one leave type's entitlement for the current period.
//
// INVARIANT: 0 <= Consumed <= Total at all times. The ledger never lets
// Consume push past Total; see CanConsume.
type Balance struct {
	Total    decimal.Decimal `json:"total"`
	Consumed decimal.Decimal `json:"consumed"`
}

// Available returns Total - Consumed.
func (b Balance) Available() decimal.Decimal {
	return b.Total.Sub(b.Consumed)
}

// =============================================================================
// REQUEST - Leave request lifecycle
// =============================================================================

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// terminal reports whether a status admits no further transition.
func (s RequestStatus) terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Request is a single leave request. Created as Pending; the requester
// may cancel it, the approval collaborator may approve or reject it.
// Once in a terminal state it is immutable.
type Request struct {
	ID        string          `json:"id"`
	LeaveType Type            `json:"leaveType"`
	StartDate string          `json:"startDate"` // "2006-01-02"
	EndDate   string          `json:"endDate"`
	Days      decimal.Decimal `json:"days"`
	Reason    string          `json:"reason"`
	Status    RequestStatus   `json:"status"`
	AppliedOn time.Time       `json:"appliedOn"`
}

// ApplyInput is what the requester supplies; everything else is derived.
type ApplyInput struct {
	LeaveType Type
	StartDate string
	EndDate   string
	Days      decimal.Decimal
	Reason    string
}
