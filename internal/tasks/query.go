package tasks

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Stats are the dashboard counters over the whole collection.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
	Upcoming  int `json:"upcoming"`
}

// IsOverdue reports whether t is incomplete and due before the start of
// now's calendar day.
func IsOverdue(t Task, now time.Time) bool {
	if t.Completed {
		return false
	}
	return t.DueDate.Before(StartOfDay(now))
}

// IsUpcoming reports whether t is incomplete and due after the start of
// now's calendar day.
func IsUpcoming(t Task, now time.Time) bool {
	if t.Completed {
		return false
	}
	return t.DueDate.After(StartOfDay(now))
}

// IsPending reports whether t is incomplete and not overdue. Every
// upcoming task is also pending.
func IsPending(t Task, now time.Time) bool {
	return !t.Completed && !IsOverdue(t, now)
}

// Matches reports whether title or description contains query, ignoring case.
// An empty query matches everything.
func Matches(t Task, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// VisibleTasks returns the searched, filtered and sorted tasks of s.
// Day boundaries are taken from now's location. s is not modified.
func VisibleTasks(s Snapshot, now time.Time) []Task {
	out := make([]Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		if !Matches(t, s.SearchQuery) {
			continue
		}
		if !inFilter(t, s.Filter, now) {
			continue
		}
		out = append(out, t)
	}
	sortTasks(out, s.SortBy, s.Locale)
	return out
}

// ComputeStats counts the whole collection of s, ignoring search and filter.
func ComputeStats(s Snapshot, now time.Time) Stats {
	st := Stats{Total: len(s.Tasks)}
	for _, t := range s.Tasks {
		switch {
		case t.Completed:
			st.Completed++
		case IsOverdue(t, now):
			st.Overdue++
		default:
			st.Pending++
		}
		if IsUpcoming(t, now) {
			st.Upcoming++
		}
	}
	return st
}

func inFilter(t Task, f Filter, now time.Time) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return IsPending(t, now)
	case FilterOverdue:
		return IsOverdue(t, now)
	case FilterUpcoming:
		return IsUpcoming(t, now)
	default:
		return true
	}
}

func sortTasks(ts []Task, key SortKey, locale language.Tag) {
	switch key {
	case SortByDueDate:
		slices.SortStableFunc(ts, func(a, b Task) int { return a.DueDate.Compare(b.DueDate) })
	case SortByCreatedAt:
		slices.SortStableFunc(ts, func(a, b Task) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case SortByTitle:
		// Collators keep scratch buffers and are not safe for concurrent use.
		c := collate.New(locale)
		slices.SortStableFunc(ts, func(a, b Task) int { return c.CompareString(a.Title, b.Title) })
	}
}

// DueBadge is the short status label shown next to a task.
func DueBadge(t Task, now time.Time) string {
	switch {
	case t.Completed:
		return "Completed"
	case t.DueDate.Before(now):
		return "Overdue"
	}
	due := StartOfDay(t.DueDate.In(now.Location()))
	today := StartOfDay(now)
	switch {
	case due.Equal(today):
		return "Due Today"
	case due.Equal(today.AddDate(0, 0, 1)):
		return "Due Tomorrow"
	}
	return ""
}
