package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minutesPerDay = 24 * 60
	dateLayout    = "2006-01-02"
)

// ClockTime is a time of day in minutes after midnight, 0..1439.
type ClockTime int

// ParseClockTime parses "HH:MM" with hour 0..23 and minute 0..59.
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, NewError(KindTimeInvalid, "%q is not HH:MM", s)
	}

	hour, err := parseDigits(hh, 2)
	if err != nil || hour > 23 {
		return 0, NewError(KindTimeInvalid, "%q has an invalid hour", s)
	}

	minute, err := parseDigits(mm, 2)
	if err != nil || minute > 59 {
		return 0, NewError(KindTimeInvalid, "%q has an invalid minute", s)
	}

	return ClockTime(hour*60 + minute), nil
}

func (t ClockTime) Hour() int   { return int(t) / 60 }
func (t ClockTime) Minute() int { return int(t) % 60 }

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

const maxDurationHourDigits = 2

// Duration is a movie running time stored as "H.MM": hours, a dot, and a
// two digit minute part. "1.30" is one hour thirty minutes.
type Duration struct {
	Hours   int
	Minutes int
}

// ParseDuration parses the "H.MM" format with at most two hour digits. Any
// other shape, including "2:30", is an integrity failure of the movie record
// rather than a user error.
func ParseDuration(s string) (Duration, error) {
	hh, mm, ok := strings.Cut(s, ".")
	if !ok {
		return Duration{}, NewError(KindDurationInvalid, "%q is not H.MM", s)
	}

	hours, err := parseDigits(hh, maxDurationHourDigits)
	if err != nil {
		return Duration{}, NewError(KindDurationInvalid, "%q has an invalid hour part", s)
	}

	if len(mm) != 2 {
		return Duration{}, NewError(KindDurationInvalid, "%q must have two minute digits", s)
	}

	minutes, err := parseDigits(mm, 2)
	if err != nil || minutes > 59 {
		return Duration{}, NewError(KindDurationInvalid, "%q has an invalid minute part", s)
	}

	return Duration{Hours: hours, Minutes: minutes}, nil
}

func (d Duration) Total() int {
	return d.Hours*60 + d.Minutes
}

func (d Duration) String() string {
	return fmt.Sprintf("%d.%02d", d.Hours, d.Minutes)
}

// parseDigits accepts only ASCII digits; maxLen 0 means unbounded.
func parseDigits(s string, maxLen int) (int, error) {
	if s == "" || (maxLen > 0 && len(s) > maxLen) {
		return 0, fmt.Errorf("invalid length")
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-digit %q", r)
		}
	}

	return strconv.Atoi(s)
}

// ParseShowingDate parses "YYYY-MM-DD" using calendar rules (no Feb 30).
func ParseShowingDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, WrapError(KindDateInvalid, err, "%q", s)
	}

	return d, nil
}

func FormatShowingDate(t time.Time) string {
	return t.Format(dateLayout)
}

// Window is the busy interval of a hall for one showing on its own date.
type Window struct {
	Start ClockTime
	// End wraps modulo 24h, so a 23:30 showing lasting 1.00 ends at 00:30.
	End ClockTime
	// Wrapped is set when the showing runs past midnight.
	Wrapped bool
}

func NewWindow(start ClockTime, d Duration) Window {
	total := int(start) + d.Total()

	return Window{
		Start:   start,
		End:     ClockTime(total % minutesPerDay),
		Wrapped: total >= minutesPerDay,
	}
}

// sameDayEnd is the end used for comparisons on the showing's own date. The
// part of a wrapped window after midnight belongs to the next date, which
// is not checked. Whether it should be is an open product question; tests
// pin the clamp.
func (w Window) sameDayEnd() int {
	if w.Wrapped {
		return minutesPerDay
	}

	return int(w.End)
}

// BoundaryPolicy decides whether touching windows conflict.
type BoundaryPolicy int

const (
	// BoundaryInclusive treats [start, end] as busy on both ends, so a
	// showing starting exactly when another ends is rejected. Kept as the
	// default until product decides whether back-to-back showings are
	// allowed; tests pin it.
	BoundaryInclusive BoundaryPolicy = iota
	// BoundaryHalfOpen treats [start, end) as busy.
	BoundaryHalfOpen
)

func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch strings.ToLower(s) {
	case "", "inclusive":
		return BoundaryInclusive, nil
	case "half-open", "halfopen":
		return BoundaryHalfOpen, nil
	default:
		return 0, fmt.Errorf("unknown boundary policy %q", s)
	}
}

func (p BoundaryPolicy) String() string {
	if p == BoundaryHalfOpen {
		return "half-open"
	}

	return "inclusive"
}

// Overlaps reports whether two windows on the same date overlap.
func (p BoundaryPolicy) Overlaps(a, b Window) bool {
	aStart, aEnd := int(a.Start), a.sameDayEnd()
	bStart, bEnd := int(b.Start), b.sameDayEnd()

	if aStart == bStart {
		return true
	}

	if p == BoundaryHalfOpen {
		return aStart < bEnd && bStart < aEnd
	}

	return aStart <= bEnd && bStart <= aEnd
}

// ScheduleSlot is the shape compared by the conflict checker.
type ScheduleSlot struct {
	ShowingID int
	HallID    int
	Date      time.Time
	Start     ClockTime
	Duration  Duration
}

func (s ScheduleSlot) Window() Window {
	return NewWindow(s.Start, s.Duration)
}

func (s ScheduleSlot) sameHallAndDate(o ScheduleSlot) bool {
	return s.HallID == o.HallID && s.Date.Equal(o.Date)
}

// ConflictChecker decides whether a candidate slot collides with slots
// already scheduled. Slots in other halls or on other dates are ignored.
type ConflictChecker struct {
	Policy BoundaryPolicy
}

func (c ConflictChecker) Conflicts(candidate ScheduleSlot, existing []ScheduleSlot) bool {
	_, found := c.FirstConflict(candidate, existing)
	return found
}

// FirstConflict returns the first existing slot overlapping the candidate.
// A slot with the candidate's own non-zero ShowingID is skipped, which lets
// an update be checked against everything but itself.
func (c ConflictChecker) FirstConflict(candidate ScheduleSlot, existing []ScheduleSlot) (ScheduleSlot, bool) {
	window := candidate.Window()

	for _, slot := range existing {
		if !candidate.sameHallAndDate(slot) {
			continue
		}

		if candidate.ShowingID != 0 && slot.ShowingID == candidate.ShowingID {
			continue
		}

		if c.Policy.Overlaps(slot.Window(), window) {
			return slot, true
		}
	}

	return ScheduleSlot{}, false
}
