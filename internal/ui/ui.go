package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"taskboard/internal/config"
	"taskboard/internal/tasks"
)

const (
	dueLayout     = "2006-01-02 15:04"
	dueEditLayout = "2006-01-02T15:04"

	clockInterval = time.Minute
)

// clockMsg re-evaluates the date predicates while no key is pressed.
type clockMsg time.Time

type mode int

const (
	modeList mode = iota
	modeForm
	modeSearch
)

type formState struct {
	taskID      string
	title       string
	description string
	due         string
	index       int
}

type Model struct {
	store      *tasks.Store
	cfg        config.Config
	logger     *log.Logger
	snap       tasks.Snapshot
	visible    []tasks.Task
	stats      tasks.Stats
	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	confirmDel bool
	pendingDel *tasks.Task
	form       *formState
	chord      string
}

func New(store *tasks.Store, cfg config.Config, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		store:  store,
		cfg:    cfg,
		logger: logger,
		status: fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to delete.", cfg.Keys.Add, cfg.Keys.Delete),
		input:  ti,
		mode:   modeList,
	}
	m.refresh()
	return m
}

func Run(store *tasks.Store, cfg config.Config, logger *log.Logger) error {
	program := tea.NewProgram(New(store, cfg, logger))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tickClock()
}

func tickClock() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	case clockMsg:
		m.refresh()
		return m, tickClock()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch m.mode {
	case modeForm:
		return m.updateFormMode(key, msg)
	case modeSearch:
		return m.updateSearchMode(key, msg)
	}
	return m.updateListMode(key)
}

// refresh re-reads the store and recomputes the visible list and stats.
func (m *Model) refresh() {
	if snap := m.store.Snapshot(); snap.Version != m.snap.Version || m.snap.Tasks == nil {
		m.logger.Debug("snapshot", "version", snap.Version, "tasks", len(snap.Tasks))
		m.snap = snap
	}
	m.evaluate(m.store.Now())
}

// evaluate derives the visible list and stats from the cached snapshot at now.
func (m *Model) evaluate(now time.Time) {
	m.visible = tasks.VisibleTasks(m.snap, now)
	m.stats = tasks.ComputeStats(m.snap, now)
	m.cursor = clampCursor(m.cursor, len(m.visible))
}

func (m *Model) focus(id string) {
	for i, t := range m.visible {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m Model) current() (tasks.Task, bool) {
	if len(m.visible) == 0 {
		return tasks.Task{}, false
	}
	return m.visible[clampCursor(m.cursor, len(m.visible))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	// Single-key bindings win over the start of a sort chord.
	if m.chord != "" || !m.bound(key) {
		if sortBy, done, partial := m.sortChord(m.chord + key); done {
			m.chord = ""
			return m.setSort(sortBy)
		} else if partial {
			m.chord += key
			return m, nil
		}
	}
	m.chord = ""

	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.visible) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.visible))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.visible))
		}
	case m.cfg.Keys.Add:
		return m.startForm(nil)
	case m.cfg.Keys.Edit:
		t, ok := m.current()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		return m.startForm(&t)
	case m.cfg.Keys.Toggle:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.logger.Debug("toggle completion", "id", t.ID)
		updated, err := m.store.ToggleCompletion(t.ID)
		if err != nil {
			m.logger.Warn("toggle failed", "id", t.ID, "err", err)
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.refresh()
		m.status = fmt.Sprintf("Marked \"%s\" %s", updated.Title, humanDone(updated.Completed))
	case m.cfg.Keys.Delete:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case m.cfg.Keys.Detail:
		t, ok := m.current()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		m.status = m.describe(t)
	case m.cfg.Keys.Search:
		m.mode = modeSearch
		m.input.Placeholder = "Search title or description"
		m.input.SetValue(m.snap.SearchQuery)
		m.input.CursorEnd()
		m.status = "Search: type to filter, Enter to keep, Esc to clear"
		cmd := m.input.Focus()
		return m, cmd
	case m.cfg.Keys.FilterNext:
		return m.setFilter(m.snap.Filter.Next())
	case m.cfg.Keys.FilterPrev:
		return m.setFilter(m.snap.Filter.Prev())
	}
	return m, nil
}

func (m Model) bound(key string) bool {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", "up", "down":
		return true
	case "":
		return false
	}
	for _, b := range []string{k.Quit, k.Down, k.Up, k.Add, k.Edit, k.Toggle, k.Delete, k.Detail, k.Search, k.FilterNext, k.FilterPrev} {
		if b == key {
			return true
		}
	}
	return false
}

// sortChord resolves a (possibly partial) key sequence against the sort bindings.
func (m Model) sortChord(seq string) (tasks.SortKey, bool, bool) {
	bindings := []struct {
		keys string
		sort tasks.SortKey
	}{
		{m.cfg.Keys.SortDue, tasks.SortByDueDate},
		{m.cfg.Keys.SortCreated, tasks.SortByCreatedAt},
		{m.cfg.Keys.SortTitle, tasks.SortByTitle},
	}
	partial := false
	for _, b := range bindings {
		if b.keys == "" {
			continue
		}
		if b.keys == seq {
			return b.sort, true, false
		}
		if strings.HasPrefix(b.keys, seq) {
			partial = true
		}
	}
	return "", false, partial
}

func (m Model) setSort(sortBy tasks.SortKey) (tea.Model, tea.Cmd) {
	m.logger.Debug("set sort", "sort_by", sortBy)
	if err := m.store.SetSortBy(string(sortBy)); err != nil {
		m.logger.Warn("set sort failed", "err", err)
		m.status = fmt.Sprintf("sort failed: %v", err)
		return m, nil
	}
	m.refresh()
	m.status = "Sorted by " + string(sortBy)
	return m, nil
}

func (m Model) setFilter(f tasks.Filter) (tea.Model, tea.Cmd) {
	m.logger.Debug("set filter", "filter", f)
	if err := m.store.SetFilter(string(f)); err != nil {
		m.logger.Warn("set filter failed", "err", err)
		m.status = fmt.Sprintf("filter failed: %v", err)
		return m, nil
	}
	m.refresh()
	m.status = "Filter: " + string(f)
	return m, nil
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.store.SetSearchQuery("")
		m.leaveInput()
		m.refresh()
		m.status = "Search cleared"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.leaveInput()
		if m.snap.SearchQuery == "" {
			m.status = "Search cleared"
		} else {
			m.status = fmt.Sprintf("Search: %q (%d shown)", m.snap.SearchQuery, len(m.visible))
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if q := m.input.Value(); q != m.snap.SearchQuery {
			m.store.SetSearchQuery(q)
			m.refresh()
		}
		return m, cmd
	}
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.input.SetValue("")
	m.input.Blur()
}

func (m Model) View() string {
	m.evaluate(m.store.Now())

	var b strings.Builder

	b.WriteString("Task Dashboard")
	b.WriteString("\n")
	b.WriteString(renderStats(m.stats))
	b.WriteString("\n")
	b.WriteString(m.renderControls())
	b.WriteString("\n\n")

	switch {
	case len(m.snap.Tasks) == 0:
		b.WriteString(fmt.Sprintf("No tasks yet. Press '%s' to add one.", m.cfg.Keys.Add))
	case len(m.visible) == 0:
		b.WriteString("No tasks match the current filter.")
	default:
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")

	switch m.mode {
	case modeForm:
		b.WriteString(m.formTitle())
		b.WriteString(" (tab/shift+tab to move, enter to save/next, esc to cancel)")
		b.WriteString("\n\n")
		b.WriteString(m.renderFormBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.currentFormLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case modeSearch:
		b.WriteString("Search: ")
		b.WriteString(m.input.View())
	default:
		b.WriteString(m.renderDetailPanel())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))

	return b.String()
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.cfg.Keys.Cancel:
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		m.logger.Debug("delete task", "id", m.pendingDel.ID)
		m.status = "Deleted task"
		if _, ok := m.store.Get(m.pendingDel.ID); !ok {
			m.status = "Task was already gone"
		}
		m.store.DeleteTask(m.pendingDel.ID)
		m.refresh()
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s edit • %s detail • %s toggle • %s delete • %s search • %s/%s filter • %s/%s/%s sort • %s quit",
		k.Up, k.Down, k.Add, k.Edit, k.Detail, keyLabel(k.Toggle), k.Delete, k.Search, k.FilterNext, k.FilterPrev, k.SortDue, k.SortCreated, k.SortTitle, k.Quit)
}

func renderStats(s tasks.Stats) string {
	return fmt.Sprintf("Total %d • Completed %d • Pending %d • Overdue %d • Upcoming %d",
		s.Total, s.Completed, s.Pending, s.Overdue, s.Upcoming)
}

func (m Model) renderControls() string {
	search := m.snap.SearchQuery
	if search == "" {
		search = "(none)"
	}
	return fmt.Sprintf("Filter: %s • Sort: %s • Search: %s", m.snap.Filter, m.snap.SortBy, search)
}

func (m Model) renderTaskList() string {
	now := m.store.Now()
	var b strings.Builder
	for i, t := range m.visible {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = ">"
		}

		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		body := fmt.Sprintf("%s %s %s  due %s", cursor, checkbox, t.Title, t.DueDate.In(now.Location()).Format(dueLayout))
		if badge := tasks.DueBadge(t, now); badge != "" {
			body += " [" + badge + "]"
		}

		b.WriteString(body)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) describe(t tasks.Task) string {
	loc := m.store.Location()
	info := fmt.Sprintf("Task %s • %s • %s • due:%s", t.ID, t.Title, humanDone(t.Completed), tasks.FormatTimestamp(t.DueDate.In(loc)))
	if t.CompletedAt != nil {
		info += " • completed:" + tasks.FormatTimestamp(t.CompletedAt.In(loc))
	}
	if t.UpdatedAt != nil {
		info += " • updated:" + tasks.FormatTimestamp(t.UpdatedAt.In(loc))
	}
	return info
}

func (m Model) renderDetailPanel() string {
	t, ok := m.current()
	if !ok {
		return "No task selected"
	}
	loc := m.store.Location()
	var b strings.Builder
	b.WriteString("Details\n")
	b.WriteString(fmt.Sprintf("Title       : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Description : %s\n", emptyPlaceholder(t.Description)))
	b.WriteString(fmt.Sprintf("Status      : %s\n", humanDone(t.Completed)))
	b.WriteString(fmt.Sprintf("Due         : %s\n", t.DueDate.In(loc).Format(dueLayout)))
	b.WriteString(fmt.Sprintf("Created     : %s\n", t.CreatedAt.In(loc).Format(dueLayout)))
	if t.CompletedAt != nil {
		b.WriteString(fmt.Sprintf("Completed   : %s\n", t.CompletedAt.In(loc).Format(dueLayout)))
	}
	if t.UpdatedAt != nil {
		b.WriteString(fmt.Sprintf("Updated     : %s\n", t.UpdatedAt.In(loc).Format(dueLayout)))
	}
	return b.String()
}

func (m Model) startForm(t *tasks.Task) (tea.Model, tea.Cmd) {
	m.form = &formState{}
	if t != nil {
		m.form = &formState{
			taskID:      t.ID,
			title:       t.Title,
			description: t.Description,
			due:         t.DueDate.In(m.store.Location()).Format(dueEditLayout),
		}
	}
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.mode = modeForm
	m.status = m.formPrompt()
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.leaveInput()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		m.moveField(1)
		return m, nil
	case "shift+tab", "up":
		m.moveField(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(formFields())-1 {
			return m.saveForm()
		}
		m.moveField(1)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveField(delta int) {
	m.form.setCurrentValue(m.input.Value())
	m.form.index = wrapIndex(m.form.index+delta, len(formFields()))
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.status = m.formPrompt()
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	f := m.form
	var (
		saved tasks.Task
		err   error
		verb  = "Added"
	)
	if f.taskID == "" {
		m.logger.Debug("add task", "title", f.title)
		saved, err = m.store.AddTask(f.title, f.description, f.due)
	} else {
		verb = "Saved"
		m.logger.Debug("edit task", "id", f.taskID)
		saved, err = m.store.EditTask(f.taskID, f.title, f.description, f.due)
	}
	if err != nil {
		m.logger.Warn("save failed", "id", f.taskID, "err", err)
		m.status = fmt.Sprintf("save failed: %v", err)
		var verr *tasks.ValidationError
		if errors.As(err, &verr) {
			if i := fieldIndex(verr.Field); i >= 0 {
				f.index = i
				m.input.SetValue(f.currentValue())
				m.input.Placeholder = f.currentLabel()
			}
		}
		if errors.Is(err, tasks.ErrNotFound) {
			m.form = nil
			m.leaveInput()
			m.refresh()
		}
		return m, nil
	}

	m.form = nil
	m.leaveInput()
	m.refresh()
	m.focus(saved.ID)
	m.status = fmt.Sprintf("%s \"%s\"", verb, saved.Title)
	return m, nil
}

func formFields() []string {
	return []string{"title", "description", "due (YYYY-MM-DD[THH:MM])"}
}

func fieldIndex(field string) int {
	switch field {
	case "title":
		return 0
	case "description":
		return 1
	case "dueDate":
		return 2
	}
	return -1
}

func (fs formState) currentLabel() string {
	return formFields()[fs.index]
}

func (fs formState) currentValue() string {
	switch fs.index {
	case 0:
		return fs.title
	case 1:
		return fs.description
	case 2:
		return fs.due
	default:
		return ""
	}
}

func (fs *formState) setCurrentValue(v string) {
	switch fs.index {
	case 0:
		fs.title = v
	case 1:
		fs.description = v
	case 2:
		fs.due = v
	}
}

func (m Model) formTitle() string {
	if m.form != nil && m.form.taskID != "" {
		return "Edit task"
	}
	return "New task"
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel.",
		m.form.currentLabel(), m.form.index+1, len(formFields()))
}

func (m Model) currentFormLabel() string {
	if m.form == nil {
		return ""
	}
	return m.form.currentLabel()
}

func (m Model) renderFormBox() string {
	if m.form == nil {
		return ""
	}
	values := []string{m.form.title, m.form.description, m.form.due}
	var b strings.Builder
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-26s : %s\n", prefix, name, val))
	}
	return b.String()
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
