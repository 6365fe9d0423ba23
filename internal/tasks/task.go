// Package tasks holds the canonical task collection and the pure queries
// that derive the visible list and dashboard statistics from it.
package tasks

import (
	"strings"
	"time"
)

// Task is a single to-do item.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"dueDate"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Filter selects which status category of tasks is visible.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
	FilterOverdue   Filter = "overdue"
	FilterUpcoming  Filter = "upcoming"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterCompleted, FilterPending, FilterOverdue, FilterUpcoming}

// SortKey selects the ordering of the visible tasks.
type SortKey string

const (
	SortByDueDate   SortKey = "dueDate"
	SortByCreatedAt SortKey = "createdAt"
	SortByTitle     SortKey = "title"
)

// SortKeys lists every sort key in display order.
var SortKeys = []SortKey{SortByDueDate, SortByCreatedAt, SortByTitle}

// ParseFilter validates a filter name.
func ParseFilter(v string) (Filter, error) {
	v = strings.TrimSpace(v)
	for _, f := range Filters {
		if string(f) == v {
			return f, nil
		}
	}
	return "", &ValidationError{Field: "filter", Value: v, Reason: "must be one of all, completed, pending, overdue, upcoming"}
}

// ParseSortKey validates a sort key name.
func ParseSortKey(v string) (SortKey, error) {
	v = strings.TrimSpace(v)
	for _, k := range SortKeys {
		if string(k) == v {
			return k, nil
		}
	}
	return "", &ValidationError{Field: "sortBy", Value: v, Reason: "must be one of dueDate, createdAt, title"}
}

// Next returns the filter following f, wrapping around.
func (f Filter) Next() Filter {
	return Filters[(indexOf(Filters, f)+1)%len(Filters)]
}

// Prev returns the filter preceding f, wrapping around.
func (f Filter) Prev() Filter {
	n := len(Filters)
	return Filters[(indexOf(Filters, f)-1+n)%n]
}

func indexOf(fs []Filter, f Filter) int {
	for i, v := range fs {
		if v == f {
			return i
		}
	}
	return 0
}
