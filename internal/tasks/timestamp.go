package tasks

import (
	"strings"
	"time"
)

const (
	dateLayout       = "2006-01-02"
	localTimeLayout  = "2006-01-02T15:04"
	localSecsLayout  = "2006-01-02T15:04:05"
	spacedLayout     = "2006-01-02 15:04"
	spacedSecsLayout = "2006-01-02 15:04:05"
)

var localLayouts = []string{localSecsLayout, localTimeLayout, spacedSecsLayout, spacedLayout, dateLayout}

// ParseTimestamp converts a boundary timestamp into a time.Time.
// Inputs without an offset are read as wall clock time in loc; a bare date
// means midnight in loc.
func ParseTimestamp(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, &ValidationError{Field: "dueDate", Reason: "is required"}
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{Field: "dueDate", Value: v, Reason: "expected RFC 3339, YYYY-MM-DDTHH:MM[:SS] or YYYY-MM-DD"}
}

// FormatTimestamp renders t for the presentation boundary.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
