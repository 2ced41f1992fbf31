// Package attendance implements the per-employee attendance ledger:
// one log per calendar day, a transient check-in session, and derived
// duration and lateness classification.
package attendance

// =============================================================================
// STATUS - Daily attendance classification
// =============================================================================

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusOnTime  Status = "on_time"
)

// LateThresholdMinutes is the check-in cutoff: anything strictly after
// 09:15 is classified Late.
const LateThresholdMinutes = 9*60 + 15

// =============================================================================
// DAY LOG - One record per (employee, calendar date)
// =============================================================================

// DayLog is a single day's attendance record. Times are stored in the
// 12-hour notation the UI displays ("9:12 AM"); Duration and TotalHours
// are derived at check-out and are never updated independently of each
// other.
type DayLog struct {
	Date       string `json:"date"`     // calendar day, "2006-01-02", immutable key
	CheckIn    string `json:"checkIn"`  // empty until first check-in
	CheckOut   string `json:"checkOut"` // empty until check-out
	Duration   string `json:"duration"` // "8h 48m", derived
	TotalHours string `json:"totalHours"` // "8.8h", derived
	Status     Status `json:"status"`
}

// Complete reports whether the day has both a check-in and a check-out.
func (l DayLog) Complete() bool {
	return l.CheckIn != "" && l.CheckOut != ""
}

// =============================================================================
// SESSION - Transient in-progress check-in state
// =============================================================================

// Session tracks the open check-in between CheckIn and CheckOut.
//
// INVARIANT: CheckedIn is true iff the current day's log has a check-in
// and no check-out.
type Session struct {
	CheckedIn   bool   `json:"isCheckedIn"`
	CheckInTime string `json:"checkInTime"` // 12-hour notation, empty when not checked in
}
