/*
handlers.go - HTTP handlers for the work ledger

PURPOSE:
  Exposes the work ledger service over REST. Handlers parse the request,
  delegate to the domain layer, and map domain errors onto HTTP status
  codes. No business rules live here.

ENDPOINTS:
  Employees:
    GET    /api/employees                     List directory
    POST   /api/employees                     Create employee
    GET    /api/employees/{id}                Get employee
    POST   /api/employees/{id}/exit           Mark exited

  Attendance:
    POST   /api/employees/{id}/attendance/check-in
    POST   /api/employees/{id}/attendance/check-out
    GET    /api/employees/{id}/attendance
    GET    /api/employees/{id}/attendance/session

  Leave:
    GET    /api/employees/{id}/leave/balances
    GET    /api/employees/{id}/leave/requests
    POST   /api/employees/{id}/leave/requests
    POST   /api/employees/{id}/leave/requests/{requestID}/cancel
    POST   /api/employees/{id}/leave/requests/{requestID}/approve
    POST   /api/employees/{id}/leave/requests/{requestID}/reject

  Settlement:
    GET    /api/employees/{id}/settlement
    POST   /api/employees/{id}/settlement
    POST   /api/employees/{id}/settlement/finalize

ERROR MAPPING:
  400: malformed input, invalid leave range, negative duration
  404: unknown employee or request
  409: state conflicts (terminal transition, double finalize, shortfall)
  500: everything else

SECURITY NOTE:
  No authentication; the acting employee is the one in the URL. The
  surrounding dashboard runs single-session.

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/work-ledger/attendance"
	"github.com/warp/work-ledger/clock"
	"github.com/warp/work-ledger/leave"
	"github.com/warp/work-ledger/ledger"
	"github.com/warp/work-ledger/settlement"
)

// Handler holds the handler dependencies.
type Handler struct {
	Service   *ledger.Service
	Employees EmployeeDirectory

	// Now returns the current wall-clock instant. Overridable in tests.
	Now func() time.Time
}

// EmployeeDirectory is the directory surface the API needs; both store
// implementations satisfy it.
type EmployeeDirectory interface {
	ledger.Directory
	CreateEmployee(ctx context.Context, e ledger.Employee) (ledger.Employee, error)
	GetEmployee(ctx context.Context, employeeID string) (ledger.Employee, error)
	ListEmployees(ctx context.Context) ([]ledger.Employee, error)
	MarkExited(ctx context.Context, employeeID string) error
}

// NewHandler creates a handler using the real wall clock.
func NewHandler(service *ledger.Service, employees EmployeeDirectory) *Handler {
	return &Handler{Service: service, Employees: employees, Now: time.Now}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Employees.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	emp, err := h.Employees.CreateEmployee(r.Context(), ledger.Employee{
		ID:       req.ID,
		Name:     req.Name,
		Email:    req.Email,
		HireDate: hireDate,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Employees.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

func (h *Handler) ExitEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Employees.MarkExited(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	dayLog, err := h.Service.CheckIn(r.Context(), chi.URLParam(r, "id"), h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceLogDTO(dayLog))
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	dayLog, err := h.Service.CheckOut(r.Context(), chi.URLParam(r, "id"), h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if dayLog == nil {
		// No open session: nothing changed.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceLogDTO(*dayLog))
}

func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	history := h.Service.AttendanceHistory(chi.URLParam(r, "id"))
	dtos := make([]AttendanceLogDTO, len(history))
	for i, l := range history {
		dtos[i] = toAttendanceLogDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := h.Service.CurrentSession(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, SessionDTO{
		IsCheckedIn: session.CheckedIn,
		CheckInTime: session.CheckInTime,
	})
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

func (h *Handler) GetLeaveBalances(w http.ResponseWriter, r *http.Request) {
	balances := h.Service.LeaveBalances(chi.URLParam(r, "id"))
	dtos := make([]LeaveBalanceDTO, 0, len(balances))
	for leaveType, b := range balances {
		dtos = append(dtos, LeaveBalanceDTO{
			LeaveType: string(leaveType),
			Total:     b.Total.String(),
			Consumed:  b.Consumed.String(),
			Available: b.Available().String(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetLeaveRequests(w http.ResponseWriter, r *http.Request) {
	requests := h.Service.LeaveRequests(chi.URLParam(r, "id"))
	dtos := make([]LeaveRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toLeaveRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	var req ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	created, err := h.Service.ApplyLeave(r.Context(), chi.URLParam(r, "id"), leave.ApplyInput{
		LeaveType: leave.Type(req.LeaveType),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Days:      req.Days,
		Reason:    req.Reason,
	}, h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveRequestDTO(created))
}

func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	h.leaveTransition(w, r, h.Service.CancelLeave)
}

func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.leaveTransition(w, r, h.Service.ApproveLeave)
}

func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.leaveTransition(w, r, h.Service.RejectLeave)
}

func (h *Handler) leaveTransition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, employeeID, requestID string) (leave.Request, error)) {

	req, err := op(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "requestID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveRequestDTO(req))
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	s, ok := h.Service.SettlementFor(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "No settlement drafted", nil)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementDTO(s))
}

func (h *Handler) DraftSettlement(w http.ResponseWriter, r *http.Request) {
	var req DraftSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	items := make([]settlement.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = settlement.LineItem{
			Label:       item.Label,
			Amount:      item.Amount,
			Kind:        settlement.Kind(item.Kind),
			Description: item.Description,
		}
	}

	s, err := h.Service.DraftSettlement(r.Context(), chi.URLParam(r, "id"), items)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementDTO(s))
}

func (h *Handler) FinalizeSettlement(w http.ResponseWriter, r *http.Request) {
	s, err := h.Service.FinalizeSettlement(r.Context(), chi.URLParam(r, "id"), h.Now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettlementDTO(s))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// writeDomainError maps domain errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrEmployeeNotFound),
		errors.Is(err, leave.ErrRequestNotFound),
		errors.Is(err, ledger.ErrNoSettlement):
		writeError(w, http.StatusNotFound, "Not found", err)

	case errors.Is(err, clock.ErrMalformedTime),
		errors.Is(err, attendance.ErrNegativeDuration),
		errors.Is(err, leave.ErrInvalidLeaveRange),
		errors.Is(err, settlement.ErrNegativeAmount):
		writeError(w, http.StatusBadRequest, "Invalid input", err)

	case errors.Is(err, leave.ErrInvalidStateTransition),
		errors.Is(err, leave.ErrInsufficientBalance),
		errors.Is(err, settlement.ErrAlreadyFinalized),
		errors.Is(err, ledger.ErrEmployeeNotEligible):
		writeError(w, http.StatusConflict, "Conflict", err)

	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
