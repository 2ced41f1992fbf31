/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP contract. They decouple the internal
  domain model from clients: fields can be renamed internally without
  breaking the UI, and monetary decimals are rendered as strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

Validation happens in handlers and the domain layer; DTOs are pure data
carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/work-ledger/attendance"
	"github.com/warp/work-ledger/leave"
	"github.com/warp/work-ledger/ledger"
	"github.com/warp/work-ledger/settlement"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	HireDate  string `json:"hire_date"`
	CreatedAt string `json:"created_at,omitempty"`
}

type CreateEmployeeRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	HireDate string `json:"hire_date"`
}

func toEmployeeDTO(e ledger.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Status:    string(e.Status),
		HireDate:  e.HireDate.Format("2006-01-02"),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// ATTENDANCE
// =============================================================================

type AttendanceLogDTO struct {
	Date       string `json:"date"`
	CheckIn    string `json:"check_in,omitempty"`
	CheckOut   string `json:"check_out,omitempty"`
	Duration   string `json:"duration,omitempty"`
	TotalHours string `json:"total_hours,omitempty"`
	Status     string `json:"status"`
}

type SessionDTO struct {
	IsCheckedIn bool   `json:"is_checked_in"`
	CheckInTime string `json:"check_in_time,omitempty"`
}

func toAttendanceLogDTO(l attendance.DayLog) AttendanceLogDTO {
	return AttendanceLogDTO{
		Date:       l.Date,
		CheckIn:    l.CheckIn,
		CheckOut:   l.CheckOut,
		Duration:   l.Duration,
		TotalHours: l.TotalHours,
		Status:     string(l.Status),
	}
}

// =============================================================================
// LEAVE
// =============================================================================

type LeaveBalanceDTO struct {
	LeaveType string `json:"leave_type"`
	Total     string `json:"total"`
	Consumed  string `json:"consumed"`
	Available string `json:"available"`
}

type LeaveRequestDTO struct {
	ID        string `json:"id"`
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      string `json:"days"`
	Reason    string `json:"reason,omitempty"`
	Status    string `json:"status"`
	AppliedOn string `json:"applied_on"`
}

type ApplyLeaveRequest struct {
	LeaveType string          `json:"leave_type"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Days      decimal.Decimal `json:"days"`
	Reason    string          `json:"reason"`
}

func toLeaveRequestDTO(r leave.Request) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:        r.ID,
		LeaveType: string(r.LeaveType),
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		Days:      r.Days.String(),
		Reason:    r.Reason,
		Status:    string(r.Status),
		AppliedOn: r.AppliedOn.Format(time.RFC3339),
	}
}

// =============================================================================
// SETTLEMENT
// =============================================================================

type LineItemDTO struct {
	Label       string `json:"label"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

type SettlementDTO struct {
	Items     []LineItemDTO `json:"items"`
	NetAmount string        `json:"net_amount"`
	Status    string        `json:"status"`
	PaidAt    string        `json:"paid_at,omitempty"`
}

type DraftSettlementRequest struct {
	Items []DraftLineItem `json:"items"`
}

type DraftLineItem struct {
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
}

func toSettlementDTO(s settlement.Settlement) SettlementDTO {
	items := make([]LineItemDTO, len(s.Items))
	for i, item := range s.Items {
		items[i] = LineItemDTO{
			Label:       item.Label,
			Amount:      item.Amount.String(),
			Kind:        string(item.Kind),
			Description: item.Description,
		}
	}
	dto := SettlementDTO{
		Items:     items,
		NetAmount: s.NetAmount.String(),
		Status:    string(s.Status),
	}
	if !s.PaidAt.IsZero() {
		dto.PaidAt = s.PaidAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
