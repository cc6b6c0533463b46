package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// clockPattern accepts 24-hour H:MM or HH:MM.
var clockPattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// TimeRange is a window within one day in minutes after midnight.
type TimeRange struct {
	Start int
	End   int
}

// ParseClock converts an H:MM or HH:MM string into minutes after midnight.
func ParseClock(s string) (int, bool) {
	if !clockPattern.MatchString(s) {
		return 0, false
	}
	hh, mm, _ := strings.Cut(s, ":")
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return h*60 + m, true
}

// FormatClock renders minutes after midnight as zero padded HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether the requested window a collides with the
// existing window b.  A collision is any of: a starts inside b, a ends
// inside b, or a covers b.  Windows that only touch at an endpoint do not
// collide.
func Overlaps(a, b TimeRange) bool {
	startsInside := a.Start >= b.Start && a.Start < b.End
	endsInside := a.End > b.Start && a.End <= b.End
	covers := a.Start <= b.Start && a.End >= b.End
	return startsInside || endsInside || covers
}

// parseRange validates a start/end pair and returns the window.
func parseRange(start, end string) (TimeRange, error) {
	s, ok := ParseClock(start)
	if !ok {
		return TimeRange{}, validationError("start_time must be in HH:MM format")
	}
	e, ok := ParseClock(end)
	if !ok {
		return TimeRange{}, validationError("end_time must be in HH:MM format")
	}
	if e <= s {
		return TimeRange{}, validationError("end_time must be later than start_time")
	}
	return TimeRange{Start: s, End: e}, nil
}
