package attendance_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/work-ledger/attendance"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 10, hour, minute, 0, 0, time.UTC)
}

// =============================================================================
// CHECK-IN TESTS
// =============================================================================

func TestCheckIn_OpensSessionAndCreatesLog(t *testing.T) {
	// GIVEN: An empty ledger
	// WHEN: Checking in at 9:12 AM
	// THEN: Today's log exists with the check-in time and the session is open

	ledger := attendance.NewLedger()

	log := ledger.CheckIn(at(9, 12))

	assert.Equal(t, "2025-03-10", log.Date)
	assert.Equal(t, "9:12 AM", log.CheckIn)
	assert.Empty(t, log.CheckOut)
	assert.True(t, ledger.Session.CheckedIn)
	assert.Equal(t, "9:12 AM", ledger.Session.CheckInTime)
}

func TestCheckIn_SameDayTwice_OverwritesNotDuplicates(t *testing.T) {
	// GIVEN: An employee already checked in at 8:00 AM today
	// WHEN: Checking in again at 9:30 AM
	// THEN: The same log is updated (last check-in wins), no second log appears

	ledger := attendance.NewLedger()
	ledger.CheckIn(at(8, 0))

	log := ledger.CheckIn(at(9, 30))

	assert.Len(t, ledger.Logs, 1, "must not create a second log for the date")
	assert.Equal(t, "9:30 AM", log.CheckIn)
	assert.Equal(t, "9:30 AM", ledger.Session.CheckInTime)
}

func TestCheckIn_AfterCheckOut_ReopensDay(t *testing.T) {
	// A new check-in on a completed day clears the derived fields so they
	// cannot go stale against the new start time.

	ledger := attendance.NewLedger()
	ledger.CheckIn(at(9, 0))
	_, err := ledger.CheckOut(at(12, 0))
	require.NoError(t, err)

	ledger.CheckIn(at(13, 0))

	log, ok := ledger.LogFor("2025-03-10")
	require.True(t, ok)
	assert.Empty(t, log.CheckOut)
	assert.Empty(t, log.Duration)
	assert.Empty(t, log.TotalHours)
	assert.True(t, ledger.Session.CheckedIn)
}

// =============================================================================
// CHECK-OUT TESTS
// =============================================================================

func TestCheckOut_DerivesDurationAndHoursTogether(t *testing.T) {
	// GIVEN: Check-in at 9:12 AM
	// WHEN: Checking out at 6:00 PM
	// THEN: Duration is exactly T2-T1 and TotalHours agrees with it

	ledger := attendance.NewLedger()
	ledger.CheckIn(at(9, 12))

	log, err := ledger.CheckOut(at(18, 0))
	require.NoError(t, err)
	require.NotNil(t, log)

	assert.Equal(t, "6:00 PM", log.CheckOut)
	assert.Equal(t, "8h 48m", log.Duration)
	assert.Equal(t, "8.8h", log.TotalHours)
	assert.False(t, ledger.Session.CheckedIn)
	assert.Empty(t, ledger.Session.CheckInTime)
}

func TestCheckOut_LateClassification(t *testing.T) {
	tests := []struct {
		name    string
		checkIn time.Time
		want    attendance.Status
	}{
		{"one minute past threshold is late", at(9, 16), attendance.StatusLate},
		{"exactly 9:15 is on time", at(9, 15), attendance.StatusOnTime},
		{"9:00 is on time", at(9, 0), attendance.StatusOnTime},
		{"afternoon check-in is late", at(13, 0), attendance.StatusLate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := attendance.NewLedger()
			ledger.CheckIn(tt.checkIn)

			log, err := ledger.CheckOut(at(18, 0))
			require.NoError(t, err)
			require.NotNil(t, log)
			assert.Equal(t, tt.want, log.Status)
		})
	}
}

func TestCheckOut_WithoutSession_IsNoOp(t *testing.T) {
	ledger := attendance.NewLedger()

	log, err := ledger.CheckOut(at(18, 0))

	assert.NoError(t, err)
	assert.Nil(t, log)
	assert.Empty(t, ledger.Logs)
}

func TestCheckOut_BeforeCheckIn_Rejected(t *testing.T) {
	// GIVEN: Check-in at 6:00 PM
	// WHEN: Checking out at 9:00 AM the same day
	// THEN: NegativeDurationError, and the log keeps no derived fields

	ledger := attendance.NewLedger()
	ledger.CheckIn(at(18, 0))

	log, err := ledger.CheckOut(at(9, 0))

	assert.Nil(t, log)
	assert.ErrorIs(t, err, attendance.ErrNegativeDuration)

	var negative *attendance.NegativeDurationError
	require.ErrorAs(t, err, &negative)
	assert.Equal(t, "6:00 PM", negative.CheckIn)
	assert.Equal(t, "9:00 AM", negative.CheckOut)

	// State unchanged: session still open, derived fields untouched.
	assert.True(t, ledger.Session.CheckedIn)
	stored, _ := ledger.LogFor("2025-03-10")
	assert.Empty(t, stored.CheckOut)
	assert.Empty(t, stored.Duration)
}

func TestCheckOut_ExactDurationProperty(t *testing.T) {
	// For a spread of valid T1 <= T2 pairs, duration is exactly T2-T1.
	pairs := []struct {
		in, out      time.Time
		duration     string
		decimalHours string
	}{
		{at(9, 0), at(17, 0), "8h 0m", "8.0h"},
		{at(9, 15), at(9, 15), "0h 0m", "0.0h"},
		{at(8, 30), at(12, 45), "4h 15m", "4.3h"},
		{at(0, 0), at(23, 59), "23h 59m", "24.0h"},
	}

	for _, p := range pairs {
		ledger := attendance.NewLedger()
		ledger.CheckIn(p.in)
		log, err := ledger.CheckOut(p.out)
		require.NoError(t, err)
		require.NotNil(t, log)
		assert.Equal(t, p.duration, log.Duration)
		assert.Equal(t, p.decimalHours, log.TotalHours)
	}
}

// =============================================================================
// ABSENCE AND HISTORY
// =============================================================================

func TestMarkAbsent(t *testing.T) {
	ledger := attendance.NewLedger()

	ledger.MarkAbsent("2025-03-07")
	log, ok := ledger.LogFor("2025-03-07")
	require.True(t, ok)
	assert.Equal(t, attendance.StatusAbsent, log.Status)

	// A day with a check-in is never downgraded to absent.
	ledger.CheckIn(at(9, 0))
	ledger.MarkAbsent("2025-03-10")
	today, _ := ledger.LogFor("2025-03-10")
	assert.Equal(t, attendance.StatusPresent, today.Status)
	assert.Len(t, ledger.Logs, 2)
}

func TestHistory_ReturnsCopy(t *testing.T) {
	ledger := attendance.NewLedger()
	ledger.CheckIn(at(9, 0))

	history := ledger.History()
	require.Len(t, history, 1)
	history[0].CheckIn = "tampered"

	stored, _ := ledger.LogFor("2025-03-10")
	assert.Equal(t, "9:00 AM", stored.CheckIn, "projection must not leak mutable state")
}
