package tasks

import (
	"slices"
	"testing"
	"time"
)

func titles(ts []Task) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Title
	}
	return out
}

// scenario builds A (due yesterday), B (due at the start of today),
// C (due tomorrow) and D (due yesterday, completed).
func scenario(t *testing.T) (*Store, time.Time) {
	t.Helper()
	s, clock := newTestStore(t)
	mustAdd(t, s, "A", "", "2026-03-14")
	mustAdd(t, s, "B", "", "2026-03-15")
	mustAdd(t, s, "C", "", "2026-03-16")
	d := mustAdd(t, s, "D", "", "2026-03-14")
	if _, err := s.ToggleCompletion(d.ID); err != nil {
		t.Fatalf("ToggleCompletion failed: %v", err)
	}
	return s, clock.now
}

func TestVisibleTasksByFilter(t *testing.T) {
	tests := []struct {
		filter string
		want   []string
	}{
		{filter: "all", want: []string{"A", "D", "B", "C"}},
		{filter: "overdue", want: []string{"A"}},
		{filter: "upcoming", want: []string{"C"}},
		{filter: "pending", want: []string{"B", "C"}},
		{filter: "completed", want: []string{"D"}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			s, now := scenario(t)
			if err := s.SetFilter(tt.filter); err != nil {
				t.Fatalf("SetFilter failed: %v", err)
			}
			got := titles(VisibleTasks(s.Snapshot(), now))
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	s, now := scenario(t)
	s.SetSearchQuery("zzz")
	if err := s.SetFilter("completed"); err != nil {
		t.Fatal(err)
	}

	got := ComputeStats(s.Snapshot(), now)
	want := Stats{Total: 4, Completed: 1, Pending: 2, Overdue: 1, Upcoming: 1}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.Pending != got.Total-got.Completed-got.Overdue {
		t.Errorf("pending must equal total-completed-overdue: %+v", got)
	}
}

func TestStatsPendingIncludesUpcoming(t *testing.T) {
	s, clock := newTestStore(t)
	mustAdd(t, s, "later", "", "2026-04-01")
	mustAdd(t, s, "much later", "", "2026-05-01")

	got := ComputeStats(s.Snapshot(), clock.now)
	if got.Pending != 2 || got.Upcoming != 2 {
		t.Errorf("upcoming tasks should count as pending too: %+v", got)
	}
}

func TestDueLaterTodayIsUpcoming(t *testing.T) {
	s, clock := newTestStore(t)
	task := mustAdd(t, s, "afternoon", "", "2026-03-15T16:00")
	if !IsUpcoming(task, clock.now) {
		t.Errorf("due after the start of today should be upcoming")
	}
	if IsOverdue(task, clock.now) {
		t.Errorf("due later today must not be overdue")
	}
}

func TestVisibleTasksAllReturnsEverything(t *testing.T) {
	s, now := scenario(t)
	snap := s.Snapshot()
	got := VisibleTasks(snap, now)
	if len(got) != len(snap.Tasks) {
		t.Fatalf("got %d tasks, want %d", len(got), len(snap.Tasks))
	}
}

func TestSearchMatchesDescription(t *testing.T) {
	s, clock := newTestStore(t)
	mustAdd(t, s, "Groceries", "buy OAT milk", "2026-03-20")
	mustAdd(t, s, "Laundry", "", "2026-03-20")
	mustAdd(t, s, "Oatmeal recipe", "", "2026-03-21")

	s.SetSearchQuery("oat")
	got := titles(VisibleTasks(s.Snapshot(), clock.now))
	if !slices.Equal(got, []string{"Groceries", "Oatmeal recipe"}) {
		t.Errorf("got %v", got)
	}
}

func TestSearchThenFilter(t *testing.T) {
	s, now := scenario(t)
	s.SetSearchQuery("a")
	if err := s.SetFilter("overdue"); err != nil {
		t.Fatal(err)
	}
	got := titles(VisibleTasks(s.Snapshot(), now))
	if !slices.Equal(got, []string{"A"}) {
		t.Errorf("got %v", got)
	}
}

func TestSortByTitleIsLocaleAware(t *testing.T) {
	s, clock := newTestStore(t)
	for _, title := range []string{"Banana", "apple", "Cherry"} {
		mustAdd(t, s, title, "", "2026-03-20")
	}
	if err := s.SetSortBy("title"); err != nil {
		t.Fatal(err)
	}
	got := titles(VisibleTasks(s.Snapshot(), clock.now))
	if !slices.Equal(got, []string{"apple", "Banana", "Cherry"}) {
		t.Errorf("got %v", got)
	}
}

func TestSortIsStable(t *testing.T) {
	s, clock := newTestStore(t)
	mustAdd(t, s, "first", "", "2026-03-20")
	mustAdd(t, s, "second", "", "2026-03-19")
	mustAdd(t, s, "third", "", "2026-03-20")
	mustAdd(t, s, "fourth", "", "2026-03-20")

	got := titles(VisibleTasks(s.Snapshot(), clock.now))
	if !slices.Equal(got, []string{"second", "first", "third", "fourth"}) {
		t.Errorf("dueDate ties should keep insertion order, got %v", got)
	}
}

func TestSortByCreatedAt(t *testing.T) {
	s, clock := newTestStore(t)
	mustAdd(t, s, "old", "", "2026-03-30")
	clock.Advance(time.Minute)
	mustAdd(t, s, "new", "", "2026-03-10")
	if err := s.SetSortBy("createdAt"); err != nil {
		t.Fatal(err)
	}
	got := titles(VisibleTasks(s.Snapshot(), clock.now))
	if !slices.Equal(got, []string{"old", "new"}) {
		t.Errorf("got %v", got)
	}
}

func TestVisibleTasksDoesNotReorderSnapshot(t *testing.T) {
	s, clock := newTestStore(t)
	mustAdd(t, s, "z", "", "2026-03-22")
	mustAdd(t, s, "y", "", "2026-03-21")
	snap := s.Snapshot()

	VisibleTasks(snap, clock.now)
	if !slices.Equal(titles(snap.Tasks), []string{"z", "y"}) {
		t.Errorf("snapshot reordered: %v", titles(snap.Tasks))
	}
}

func TestPredicatesUseCurrentDay(t *testing.T) {
	s, clock := newTestStore(t)
	task := mustAdd(t, s, "x", "", "2026-03-16")
	if !IsUpcoming(task, clock.now) {
		t.Fatalf("expected upcoming today")
	}
	clock.Advance(48 * time.Hour)
	if !IsOverdue(task, clock.now) {
		t.Errorf("expected overdue two days later")
	}
}

func TestDueBadge(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, testZone)
	at := func(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, testZone) }
	completedAt := now
	tests := []struct {
		name string
		task Task
		want string
	}{
		{name: "completed", task: Task{DueDate: at(1, 0), Completed: true, CompletedAt: &completedAt}, want: "Completed"},
		{name: "past", task: Task{DueDate: at(15, 9)}, want: "Overdue"},
		{name: "later today", task: Task{DueDate: at(15, 18)}, want: "Due Today"},
		{name: "tomorrow", task: Task{DueDate: at(16, 8)}, want: "Due Tomorrow"},
		{name: "next week", task: Task{DueDate: at(22, 8)}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DueBadge(tt.task, now); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
