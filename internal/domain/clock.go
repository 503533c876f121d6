package domain

import (
	"fmt"
	"strings"
	"time"
)

// Simulated time is kept as an offset from the start of the operating day.
// Day converts between wall-clock strings ("10:30 AM") and those offsets.
type Day struct {
	Start time.Duration // since midnight
	End   time.Duration // since midnight
}

var clockLayouts = []string{"3:04 PM", "3:04PM", "15:04"}

// ParseTimeOfDay parses "10:30 AM", "10:30AM" or "10:30" into a duration since midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("parse time of day: empty value: %w", ErrInvalidTime)
	}

	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
		}
	}

	return 0, fmt.Errorf("parse time of day %q: %w", s, ErrInvalidTime)
}

// NewDay builds a Day from two time-of-day strings.
func NewDay(start, end string) (Day, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Day{}, fmt.Errorf("new day: start: %w", err)
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Day{}, fmt.Errorf("new day: end: %w", err)
	}
	if e <= s {
		return Day{}, fmt.Errorf("new day: end %q must be after start %q: %w", end, start, ErrInvalidTime)
	}
	return Day{Start: s, End: e}, nil
}

// Offset converts a time-of-day string into an offset from the day start.
// Times before the start are reported as negative offsets.
func (d Day) Offset(s string) (time.Duration, error) {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		return 0, err
	}
	return tod - d.Start, nil
}

// QueryOffset is Offset clamped at zero, for point-in-time queries.
func (d Day) QueryOffset(s string) (time.Duration, error) {
	off, err := d.Offset(s)
	if err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, nil
	}
	return off, nil
}

// Length is the end-of-day offset.
func (d Day) Length() time.Duration { return d.End - d.Start }

// Format renders an offset as a 12-hour wall-clock time.
func (d Day) Format(off time.Duration) string {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Add(d.Start + off)
	return base.Format("3:04 PM")
}

// Deadline is either a fixed offset from the day start or end of day.
type Deadline struct {
	At       time.Duration
	EndOfDay bool
}

// ParseDeadline accepts "EOD" or a time of day.
func (d Day) ParseDeadline(s string) (Deadline, error) {
	if strings.EqualFold(strings.TrimSpace(s), "EOD") {
		return Deadline{At: d.Length(), EndOfDay: true}, nil
	}
	off, err := d.Offset(s)
	if err != nil {
		return Deadline{}, fmt.Errorf("parse deadline: %w", err)
	}
	return Deadline{At: off}, nil
}

// Allows reports whether arriving at the given offset meets the deadline.
// End-of-day deadlines are always met.
func (dl Deadline) Allows(arrival time.Duration) bool {
	return dl.EndOfDay || arrival <= dl.At
}

// Before orders deadlines; end of day sorts after any fixed time.
func (dl Deadline) Before(other Deadline) bool {
	if dl.EndOfDay != other.EndOfDay {
		return !dl.EndOfDay
	}
	return dl.At < other.At
}

// Label renders the deadline the way package input writes it.
func (dl Deadline) Label(d Day) string {
	if dl.EndOfDay {
		return "EOD"
	}
	return d.Format(dl.At)
}

// Missed reports whether a delivery at the given offset came after the deadline.
// End-of-day deadlines are checked against the end of the operating day.
func (dl Deadline) Missed(at time.Duration) bool {
	return at > dl.At
}
