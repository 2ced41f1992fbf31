package ledger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/work-ledger/attendance"
	"github.com/warp/work-ledger/leave"
	"github.com/warp/work-ledger/ledger"
	"github.com/warp/work-ledger/settlement"
	"github.com/warp/work-ledger/store/memory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestService(t *testing.T) (*ledger.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := ledger.NewService(store, store, nil)

	_, err := store.CreateEmployee(context.Background(), ledger.Employee{
		ID: "emp-1", Name: "Asha Rao", Status: ledger.StatusActive,
	})
	require.NoError(t, err)
	return svc, store
}

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func money(n float64) decimal.Decimal { return decimal.NewFromFloat(n) }

// =============================================================================
// ATTENDANCE THROUGH THE SERVICE
// =============================================================================

func TestService_CheckInCheckOut_PersistsSnapshot(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, "emp-1", at(9, 0))
	require.NoError(t, err)
	assert.Equal(t, 1, store.SaveCount())

	dayLog, err := svc.CheckOut(ctx, "emp-1", at(18, 0))
	require.NoError(t, err)
	require.NotNil(t, dayLog)
	assert.Equal(t, "9h 0m", dayLog.Duration)
	assert.Equal(t, attendance.StatusOnTime, dayLog.Status)
}

func TestService_CheckInTwiceSameDay_SingleLog(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, "emp-1", at(8, 50))
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, "emp-1", at(9, 20))
	require.NoError(t, err)

	history := svc.AttendanceHistory("emp-1")
	require.Len(t, history, 1)
	assert.Equal(t, "9:20 AM", history[0].CheckIn)
	assert.Equal(t, "9:20 AM", svc.CurrentSession("emp-1").CheckInTime)
}

func TestService_CheckOutWithoutSession_NoOp(t *testing.T) {
	svc, store := newTestService(t)

	dayLog, err := svc.CheckOut(context.Background(), "emp-1", at(18, 0))

	assert.NoError(t, err)
	assert.Nil(t, dayLog)
	assert.Equal(t, 0, store.SaveCount(), "no-op must not persist")
}

func TestService_NegativeDuration_NotPersisted(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, "emp-1", at(18, 0))
	require.NoError(t, err)
	savedAfterCheckIn := store.SaveCount()

	_, err = svc.CheckOut(ctx, "emp-1", at(9, 0))

	assert.ErrorIs(t, err, attendance.ErrNegativeDuration)
	assert.Equal(t, savedAfterCheckIn, store.SaveCount())
	assert.True(t, svc.CurrentSession("emp-1").CheckedIn, "session survives rejected check-out")
}

func TestService_PersistFailure_DoesNotFailOperation(t *testing.T) {
	// Write-through is fire-and-forget: a broken repository is logged,
	// the mutation still applies in memory.
	svc, store := newTestService(t)
	store.SaveErr = errors.New("disk full")

	dayLog, err := svc.CheckIn(context.Background(), "emp-1", at(9, 0))

	assert.NoError(t, err)
	assert.Equal(t, "9:00 AM", dayLog.CheckIn)
	assert.Len(t, svc.AttendanceHistory("emp-1"), 1)
}

// =============================================================================
// REHYDRATION
// =============================================================================

func TestService_Rehydrate_RoundTripsState(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	_, err := store.CreateEmployee(ctx, ledger.Employee{ID: "emp-1", Status: ledger.StatusActive})
	require.NoError(t, err)

	first := ledger.NewService(store, store, nil)
	_, err = first.CheckIn(ctx, "emp-1", at(9, 16))
	require.NoError(t, err)
	_, err = first.CheckOut(ctx, "emp-1", at(18, 0))
	require.NoError(t, err)
	_, err = first.ApplyLeave(ctx, "emp-1", leave.ApplyInput{
		LeaveType: leave.TypeCasual,
		StartDate: "2025-03-20",
		EndDate:   "2025-03-21",
		Days:      decimal.NewFromInt(2),
		Reason:    "wedding",
	}, at(10, 0))
	require.NoError(t, err)

	// A second session over the same repository sees identical state.
	second := ledger.NewService(store, store, nil)
	require.NoError(t, second.Rehydrate(ctx))

	history := second.AttendanceHistory("emp-1")
	require.Len(t, history, 1)
	assert.Equal(t, "9:16 AM", history[0].CheckIn)
	assert.Equal(t, "8h 44m", history[0].Duration)
	assert.Equal(t, attendance.StatusLate, history[0].Status)
	assert.False(t, second.CurrentSession("emp-1").CheckedIn)

	requests := second.LeaveRequests("emp-1")
	require.Len(t, requests, 1)
	assert.Equal(t, leave.StatusPending, requests[0].Status)

	balances := second.LeaveBalances("emp-1")
	assert.True(t, balances[leave.TypeCasual].Total.Equal(decimal.NewFromInt(12)))
}

// =============================================================================
// LEAVE THROUGH THE SERVICE
// =============================================================================

func TestService_LeaveLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.ApplyLeave(ctx, "emp-1", leave.ApplyInput{
		LeaveType: leave.TypeSick,
		StartDate: "2025-03-12",
		EndDate:   "2025-03-13",
		Days:      decimal.NewFromInt(2),
	}, at(9, 0))
	require.NoError(t, err)

	approved, err := svc.ApproveLeave(ctx, "emp-1", req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, approved.Status)

	balances := svc.LeaveBalances("emp-1")
	assert.True(t, balances[leave.TypeSick].Consumed.Equal(decimal.NewFromInt(2)))

	// Terminal: cancelling the approved request fails.
	_, err = svc.CancelLeave(ctx, "emp-1", req.ID)
	assert.ErrorIs(t, err, leave.ErrInvalidStateTransition)
}

func TestService_CanConsumeLeave_Guard(t *testing.T) {
	svc, _ := newTestService(t)

	assert.NoError(t, svc.CanConsumeLeave("emp-1", leave.TypeCasual, decimal.NewFromInt(12)))
	assert.ErrorIs(t,
		svc.CanConsumeLeave("emp-1", leave.TypeCasual, decimal.NewFromInt(13)),
		leave.ErrInsufficientBalance)
}

// =============================================================================
// SETTLEMENT THROUGH THE SERVICE
// =============================================================================

func settlementItems() []settlement.LineItem {
	return []settlement.LineItem{
		{Label: "Final salary", Amount: money(45000), Kind: settlement.KindCredit},
		{Label: "Leave encashment", Amount: money(22500), Kind: settlement.KindCredit},
		{Label: "Gratuity", Amount: money(15000), Kind: settlement.KindCredit},
		{Label: "Notice recovery", Amount: money(8250), Kind: settlement.KindDebit},
		{Label: "PF transfer", Amount: money(0), Kind: settlement.KindNeutral},
	}
}

func TestService_Settlement_RequiresExitedEmployee(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.DraftSettlement(context.Background(), "emp-1", settlementItems())

	assert.ErrorIs(t, err, ledger.ErrEmployeeNotEligible)
	var eligibility *ledger.EmployeeNotEligibleError
	require.ErrorAs(t, err, &eligibility)
	assert.Equal(t, ledger.StatusActive, eligibility.Status)
}

func TestService_Settlement_FullFlow(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	require.NoError(t, store.MarkExited(ctx, "emp-1"))

	draft, err := svc.DraftSettlement(ctx, "emp-1", settlementItems())
	require.NoError(t, err)
	assert.True(t, draft.NetAmount.Equal(money(74250)))

	paid, err := svc.FinalizeSettlement(ctx, "emp-1", at(17, 0))
	require.NoError(t, err)
	assert.Equal(t, settlement.StatusPaid, paid.Status)

	// Second finalize: rejected, net unchanged.
	_, err = svc.FinalizeSettlement(ctx, "emp-1", at(18, 0))
	assert.ErrorIs(t, err, settlement.ErrAlreadyFinalized)

	view, ok := svc.SettlementFor("emp-1")
	require.True(t, ok)
	assert.True(t, view.NetAmount.Equal(money(74250)))
	assert.Equal(t, at(17, 0), view.PaidAt)

	// Paid settlements are frozen: re-drafting is rejected too.
	_, err = svc.DraftSettlement(ctx, "emp-1", nil)
	assert.ErrorIs(t, err, settlement.ErrAlreadyFinalized)
}

func TestService_Finalize_WithoutDraft(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	require.NoError(t, store.MarkExited(ctx, "emp-1"))

	_, err := svc.FinalizeSettlement(ctx, "emp-1", at(17, 0))
	assert.ErrorIs(t, err, ledger.ErrNoSettlement)
}

// =============================================================================
// PROJECTIONS
// =============================================================================

func TestService_Projections_UnknownEmployee(t *testing.T) {
	svc, store := newTestService(t)

	assert.Empty(t, svc.AttendanceHistory("ghost"))
	assert.False(t, svc.CurrentSession("ghost").CheckedIn)
	assert.Empty(t, svc.LeaveRequests("ghost"))
	assert.Empty(t, svc.LeaveBalances("ghost"))
	_, ok := svc.SettlementFor("ghost")
	assert.False(t, ok)

	// Reads must not have created state.
	assert.Equal(t, 0, store.SaveCount())
}
