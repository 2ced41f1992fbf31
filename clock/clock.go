/*
Package clock provides pure parsing and formatting helpers for the
12-hour wall-clock notation used throughout the work ledger.

PURPOSE:
  Attendance records store times the way the UI displays them: "9:12 AM",
  "6:21 PM". This package converts between that notation and
  minutes-since-midnight, which is what the engines do arithmetic on.

KEY FUNCTIONS:
  Parse:             "9:12 AM" -> 552 (minutes since midnight)
  Format:            552 -> "9:12 AM"
  FormatDuration:    528 -> "8h 48m"
  FormatDecimalHours: 528 -> "8.8h"

NORMALIZATION RULES (12-hour -> 24-hour):
  12 AM -> hour 0
  12 PM -> hour 12 (unchanged)
  N PM  -> hour N+12 for N in 1..11

All functions are total and side-effect free; the only failure mode is
malformed input to Parse.

SEE ALSO:
  - attendance: uses Parse/FormatDuration to derive log durations
*/
package clock

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MinutesPerDay is the number of minutes in a calendar day.
const MinutesPerDay = 24 * 60

// ErrMalformedTime is returned when a clock string does not match the
// digits:digits AM/PM pattern. Use with errors.Is().
var ErrMalformedTime = errors.New("malformed clock time")

// MalformedTimeError carries the offending input.
type MalformedTimeError struct {
	Input string
}

func (e *MalformedTimeError) Error() string {
	return fmt.Sprintf("malformed clock time: %q (want \"H:MM AM\" or \"H:MM PM\")", e.Input)
}

func (e *MalformedTimeError) Unwrap() error {
	return ErrMalformedTime
}

var clockPattern = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*(AM|PM|am|pm)\s*$`)

// Parse converts a 12-hour clock string to minutes since midnight.
// Accepts "9:12 AM", "12:00 pm", with optional surrounding whitespace.
// Returns MalformedTimeError for anything else, including out-of-range
// hour or minute fields.
func Parse(text string) (int, error) {
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, &MalformedTimeError{Input: text}
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	meridiem := strings.ToUpper(m[3])

	if hour < 1 || hour > 12 || minute > 59 {
		return 0, &MalformedTimeError{Input: text}
	}

	// 12 AM is midnight, 12 PM is noon, other PM hours shift by 12.
	if meridiem == "AM" && hour == 12 {
		hour = 0
	} else if meridiem == "PM" && hour != 12 {
		hour += 12
	}

	return hour*60 + minute, nil
}

// Format converts minutes since midnight back to 12-hour notation.
// Minutes outside [0, MinutesPerDay) wrap around the day.
func Format(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	hour := minutes / 60
	minute := minutes % 60

	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, meridiem)
}

// FromTime formats a wall-clock instant in 12-hour notation.
func FromTime(t time.Time) string {
	return Format(t.Hour()*60 + t.Minute())
}

// FormatDuration renders elapsed minutes as "Xh Ym".
func FormatDuration(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// FormatDecimalHours renders elapsed minutes as decimal hours, e.g. "8.8h".
// One decimal place, truncation-free rounding via decimal arithmetic.
func FormatDecimalHours(minutes int) string {
	hours := decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
	return hours.StringFixed(1) + "h"
}
