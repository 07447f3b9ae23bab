package directory

import (
	"fmt"
	"time"
)

// Window is a creation-time filter relative to the local start of day.
type Window string

const (
	WindowAll       Window = ""
	WindowToday     Window = "today"
	WindowYesterday Window = "yesterday"
	WindowWeek      Window = "week"
	WindowMonth     Window = "month"
)

// ParseWindow validates a raw window name.
func ParseWindow(raw string) (Window, error) {
	switch w := Window(raw); w {
	case WindowAll, WindowToday, WindowYesterday, WindowWeek, WindowMonth:
		return w, nil
	}
	return WindowAll, fmt.Errorf("unknown time window %q", raw)
}

// Bounds returns the half-open interval [from, to) covered by the window. A
// zero `to` means unbounded. ok is false for WindowAll.
func (w Window) Bounds(now time.Time) (from, to time.Time, ok bool) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch w {
	case WindowToday:
		return startOfDay, time.Time{}, true
	case WindowYesterday:
		return startOfDay.AddDate(0, 0, -1), startOfDay, true
	case WindowWeek:
		return startOfDay.AddDate(0, 0, -7), time.Time{}, true
	case WindowMonth:
		return startOfDay.AddDate(0, 0, -30), time.Time{}, true
	}
	return time.Time{}, time.Time{}, false
}

// FilterWindow keeps the listings created inside the window.
func FilterWindow(items []Listing, w Window, now time.Time) []Listing {
	from, to, ok := w.Bounds(now)
	if !ok {
		return items
	}

	out := make([]Listing, 0, len(items))
	for _, it := range items {
		if it.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !it.CreatedAt.Before(to) {
			continue
		}
		out = append(out, it)
	}
	return out
}
