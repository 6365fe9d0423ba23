package tasks

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
)

// Snapshot is a copy of the store state at one instant.
type Snapshot struct {
	Tasks       []Task
	Filter      Filter
	SearchQuery string
	SortBy      SortKey
	Locale      language.Tag
	Version     uint64
}

// Store owns the task collection and the view controls. Commands are
// applied one at a time; a failed command leaves the state untouched.
type Store struct {
	mu      sync.RWMutex
	tasks   []Task
	filter  Filter
	search  string
	sortBy  SortKey
	version uint64

	now    func() time.Time
	newID  func() string
	loc    *time.Location
	locale language.Tag
}

type Option func(*Store)

// WithClock replaces time.Now as the source of command timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLocation sets the zone used for "start of today" and for due dates
// given without an offset.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLocale sets the collation language for title sorting.
func WithLocale(tag language.Tag) Option {
	return func(s *Store) { s.locale = tag }
}

// WithViewControls sets the initial filter and sort key.
func WithViewControls(filter Filter, sortBy SortKey) Option {
	return func(s *Store) {
		s.filter = filter
		s.sortBy = sortBy
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		filter: FilterAll,
		sortBy: SortByDueDate,
		now:    time.Now,
		newID:  uuid.NewString,
		loc:    time.Local,
		locale: language.English,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store clock in the configured location.
func (s *Store) Now() time.Time {
	return s.now().In(s.loc)
}

// Location returns the zone used for day boundaries.
func (s *Store) Location() *time.Location {
	return s.loc
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Tasks:       slices.Clone(s.tasks),
		Filter:      s.filter,
		SearchQuery: s.search,
		SortBy:      s.sortBy,
		Locale:      s.locale,
		Version:     s.version,
	}
}

func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

func (s *Store) Filter() Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *Store) SearchQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

func (s *Store) SortBy() SortKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortBy
}

// AddTask appends a new incomplete task and returns it.
func (s *Store) AddTask(title, description, dueDate string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, &ValidationError{Field: "title", Reason: "is required"}
	}
	due, err := ParseTimestamp(dueDate, s.loc)
	if err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	if id == "" || s.indexOf(id) >= 0 {
		return Task{}, &ValidationError{Field: "id", Value: id, Reason: "is empty or already in use"}
	}
	t := Task{
		ID:          id,
		Title:       title,
		Description: description,
		DueDate:     due,
		CreatedAt:   s.now(),
	}
	s.tasks = append(s.tasks, t)
	s.version++
	return t, nil
}

// EditTask replaces title, description and due date of an existing task.
// Completion state is left as is.
func (s *Store) EditTask(id, title, description, dueDate string) (Task, error) {
	title = strings.TrimSpace(title)
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	if title == "" {
		return Task{}, &ValidationError{Field: "title", Reason: "is required"}
	}
	due, err := ParseTimestamp(dueDate, s.loc)
	if err != nil {
		return Task{}, err
	}
	now := s.now()
	t := s.tasks[i]
	t.Title = title
	t.Description = description
	t.DueDate = due
	t.UpdatedAt = &now
	s.tasks[i] = t
	s.version++
	return t, nil
}

// DeleteTask removes the task with id. Unknown ids are ignored.
func (s *Store) DeleteTask(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.version++
}

// ToggleCompletion flips the completed flag and keeps CompletedAt in step.
func (s *Store) ToggleCompletion(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, &NotFoundError{ID: id}
	}
	t := s.tasks[i]
	t.Completed = !t.Completed
	if t.Completed {
		now := s.now()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	s.tasks[i] = t
	s.version++
	return t, nil
}

func (s *Store) SetFilter(v string) error {
	f, err := ParseFilter(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.filter = f
	s.version++
	s.mu.Unlock()
	return nil
}

func (s *Store) SetSearchQuery(q string) {
	s.mu.Lock()
	s.search = q
	s.version++
	s.mu.Unlock()
}

func (s *Store) SetSortBy(v string) error {
	k, err := ParseSortKey(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sortBy = k
	s.version++
	s.mu.Unlock()
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}
