// Package daterange turns a named reporting period into a concrete createdAt
// window. Both the summary and export pipelines resolve ranges through it.
package daterange

import (
	"strings"
	"time"

	"github.com/oksasatya/narrative-weaver/internal/domain/errs"
)

const (
	All    = "all"
	Week   = "7days"
	Month  = "month"
	Year   = "year"
	Custom = "custom"
)

var aliases = map[string]string{
	"":        All,
	"all":     All,
	"7days":   Week,
	"weekly":  Week,
	"month":   Month,
	"monthly": Month,
	"year":    Year,
	"yearly":  Year,
	"custom":  Custom,
}

// Range is an inclusive createdAt window. A zero Start or End is unbounded on
// that side.
type Range struct {
	Start time.Time
	End   time.Time
}

// IsBounded reports whether either side of the window is set.
func (r Range) IsBounded() bool {
	return !r.Start.IsZero() || !r.End.IsZero()
}

// Contains reports whether t falls inside the window.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Normalize maps a range name or alias to its canonical form. Unknown names
// map to All.
func Normalize(name string) string {
	if canon, ok := aliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return canon
	}
	return All
}

// Resolve computes the window for name relative to now. customStart and
// customEnd are only read for the custom range and accept YYYY-MM-DD or
// RFC 3339; a date-only end covers the whole day.
func Resolve(name, customStart, customEnd string, now time.Time) (Range, error) {
	switch Normalize(name) {
	case Week:
		return Range{Start: now.AddDate(0, 0, -7), End: now}, nil
	case Month:
		return Range{Start: now.AddDate(0, -1, 0), End: now}, nil
	case Year:
		return Range{Start: now.AddDate(-1, 0, 0), End: now}, nil
	case Custom:
		return resolveCustom(customStart, customEnd, now.Location())
	default:
		return Range{}, nil
	}
}

func resolveCustom(startRaw, endRaw string, loc *time.Location) (Range, error) {
	startRaw, endRaw = strings.TrimSpace(startRaw), strings.TrimSpace(endRaw)
	if startRaw == "" || endRaw == "" {
		return Range{}, errs.Validation("Please provide both a start and end date for custom range.")
	}
	start, _, err := parseDate(startRaw, loc)
	if err != nil {
		return Range{}, errs.Validation("Invalid start date: " + startRaw)
	}
	end, dateOnly, err := parseDate(endRaw, loc)
	if err != nil {
		return Range{}, errs.Validation("Invalid end date: " + endRaw)
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if start.After(end) {
		return Range{}, errs.Validation("Start date must not be after end date.")
	}
	return Range{Start: start, End: end}, nil
}

func parseDate(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}
