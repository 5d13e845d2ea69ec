package domain

import (
	"fmt"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is a wall-clock time without a date, stored as seconds since
// local midnight. User input only ever carries minute resolution.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay, wrapping values past midnight.
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	s := (hour*3600 + minute*60 + second) % secondsPerDay
	if s < 0 {
		s += secondsPerDay
	}
	return TimeOfDay(s)
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, validationErrorf("time of day is required")
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, parseErrorf("invalid time %q: use HH:MM", s)
	}
	return NewTimeOfDay(t.Hour(), t.Minute(), 0), nil
}

// TimeOfDayOf returns the wall-clock time of t in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

func (t TimeOfDay) Hour() int   { return int(t) / 3600 }
func (t TimeOfDay) Minute() int { return int(t) % 3600 / 60 }
func (t TimeOfDay) Second() int { return int(t) % 60 }

// Add shifts t by d, wrapping around midnight.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return NewTimeOfDay(0, 0, int(t)+int(d/time.Second))
}

func (t TimeOfDay) String() string {
	if t.Second() != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Window is the half-open daily interval [Start, End).
// Overnight windows are not supported.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewWindow returns a RangeError unless start < end.
func NewWindow(start, end TimeOfDay) (Window, error) {
	if start >= end {
		return Window{}, rangeErrorf("end time %s must be later than start time %s", end, start)
	}
	return Window{Start: start, End: end}, nil
}

// Contains reports whether now falls inside [Start, End).
func (w Window) Contains(now TimeOfDay) bool {
	return w.Start <= now && now < w.End
}

// Closed reports whether now has reached or passed End.
func (w Window) Closed(now TimeOfDay) bool {
	return now >= w.End
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
