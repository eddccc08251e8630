package timewindow

import (
	"fmt"
	"time"
)

// ParseClock parses a "15:04" local clock string into minutes since
// midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// InWindow reports whether nowUTC falls inside the half-open local-time
// window [startLocal, endLocal) in the given IANA time zone. The instant
// is converted through the UTC moment, so DST transitions resolve by the
// zone's own rules rather than by guessing an offset for a naive local
// time. endLocal < startLocal means the window wraps past midnight;
// startLocal == endLocal is an always-empty window.
func InWindow(tzID, startLocal, endLocal string, nowUTC time.Time) (bool, error) {
	loc, err := time.LoadLocation(tzID)
	if err != nil {
		return false, fmt.Errorf("load time zone %q: %w", tzID, err)
	}

	start, err := ParseClock(startLocal)
	if err != nil {
		return false, err
	}
	end, err := ParseClock(endLocal)
	if err != nil {
		return false, err
	}

	local := nowUTC.In(loc)
	minute := local.Hour()*60 + local.Minute()

	switch {
	case start == end:
		return false, nil
	case start < end:
		return minute >= start && minute < end, nil
	default:
		// Wraps midnight: e.g. 22:00-02:00 covers late evening and early morning.
		return minute >= start || minute < end, nil
	}
}
