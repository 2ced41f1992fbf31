/*
ledger.go - Per-employee attendance ledger

PURPOSE:
  Owns the day-keyed attendance logs and the transient session for one
  employee. Check-in opens (or reopens) today's log; check-out derives
  duration, decimal hours, and the Late/OnTime classification in a single
  step so the derived fields can never go stale independently.

INVARIANTS:
  1. At most one DayLog per calendar date.
  2. Session.CheckedIn is true iff today's log has CheckIn and no CheckOut.
  3. Duration, TotalHours and Status are recomputed together at check-out.
  4. A failed operation leaves the ledger unchanged.

DECIDED BEHAVIOR (ambiguous in the original UI flow):
  - Repeated check-in on the same day overwrites the start time
    ("last check-in wins"); it never creates a second log for the date.
  - Check-out with no open session is a silent no-op (returns nil log).
  - Check-out earlier than check-in is rejected with NegativeDurationError
    rather than wrapping to the next day; overnight shifts are not a
    supported flow for this ledger.

SEE ALSO:
  - clock: 12-hour notation parsing and duration formatting
  - ledger: the store shell that scopes this per employee and persists it
*/
package attendance

import (
	"errors"
	"fmt"
	"time"

	"github.com/warp/work-ledger/clock"
)

// ErrNegativeDuration is returned when a check-out would precede the
// recorded check-in. Use with errors.Is().
var ErrNegativeDuration = errors.New("check-out before check-in")

// NegativeDurationError carries the conflicting times.
type NegativeDurationError struct {
	Date     string
	CheckIn  string
	CheckOut string
}

func (e *NegativeDurationError) Error() string {
	return fmt.Sprintf("check-out %s is before check-in %s on %s",
		e.CheckOut, e.CheckIn, e.Date)
}

func (e *NegativeDurationError) Unwrap() error {
	return ErrNegativeDuration
}

// DateKey is the canonical calendar-day key format.
const DateKey = "2006-01-02"

// =============================================================================
// LEDGER
// =============================================================================

// Ledger holds one employee's attendance state. It is plain data so the
// store shell can snapshot it as JSON; all mutation goes through the
// methods below.
type Ledger struct {
	Logs    []DayLog `json:"logs"` // newest first
	Session Session  `json:"session"`
}

// NewLedger returns an empty attendance ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// CheckIn records a check-in at the given instant. If today already has a
// log, its check-in time is overwritten (last check-in wins) and any
// previous check-out and derived fields are cleared; otherwise a new log
// is prepended. Never fails.
func (l *Ledger) CheckIn(now time.Time) DayLog {
	date := now.Format(DateKey)
	at := clock.FromTime(now)

	idx := l.indexOf(date)
	if idx < 0 {
		l.Logs = append([]DayLog{{Date: date}}, l.Logs...)
		idx = 0
	}

	log := &l.Logs[idx]
	log.CheckIn = at
	log.CheckOut = ""
	log.Duration = ""
	log.TotalHours = ""
	log.Status = StatusPresent

	l.Session = Session{CheckedIn: true, CheckInTime: at}
	return *log
}

// CheckOut closes the open session at the given instant. With no open
// session it is a no-op and returns (nil, nil). On success it derives
// duration, decimal hours and the Late/OnTime status together, then
// clears the session.
func (l *Ledger) CheckOut(now time.Time) (*DayLog, error) {
	if !l.Session.CheckedIn || l.Session.CheckInTime == "" {
		return nil, nil
	}

	date := now.Format(DateKey)
	idx := l.indexOf(date)
	if idx < 0 {
		// Session open but no log for today: the session was carried past
		// midnight. Out of scope, treat as no session.
		l.Session = Session{}
		return nil, nil
	}

	log := &l.Logs[idx]

	inMinutes, err := clock.Parse(log.CheckIn)
	if err != nil {
		return nil, err
	}
	outMinutes := now.Hour()*60 + now.Minute()

	elapsed := outMinutes - inMinutes
	if elapsed < 0 {
		return nil, &NegativeDurationError{
			Date:     date,
			CheckIn:  log.CheckIn,
			CheckOut: clock.Format(outMinutes),
		}
	}

	log.CheckOut = clock.Format(outMinutes)
	log.Duration = clock.FormatDuration(elapsed)
	log.TotalHours = clock.FormatDecimalHours(elapsed)
	if inMinutes > LateThresholdMinutes {
		log.Status = StatusLate
	} else {
		log.Status = StatusOnTime
	}

	l.Session = Session{}
	return log, nil
}

// MarkAbsent records an absence for a date with no attendance activity.
// A date that already has a check-in is left untouched.
func (l *Ledger) MarkAbsent(date string) {
	if idx := l.indexOf(date); idx >= 0 {
		if l.Logs[idx].CheckIn == "" {
			l.Logs[idx].Status = StatusAbsent
		}
		return
	}
	l.Logs = append([]DayLog{{Date: date, Status: StatusAbsent}}, l.Logs...)
}

// LogFor returns the log for a date, if any.
func (l *Ledger) LogFor(date string) (DayLog, bool) {
	if idx := l.indexOf(date); idx >= 0 {
		return l.Logs[idx], true
	}
	return DayLog{}, false
}

// History returns a copy of all logs, newest first.
func (l *Ledger) History() []DayLog {
	out := make([]DayLog, len(l.Logs))
	copy(out, l.Logs)
	return out
}

func (l *Ledger) indexOf(date string) int {
	for i := range l.Logs {
		if l.Logs[i].Date == date {
			return i
		}
	}
	return -1
}
