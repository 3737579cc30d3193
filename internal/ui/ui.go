package ui

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"tasklist/internal/config"
	"tasklist/internal/dateonly"
	"tasklist/internal/todo"
)

type mode int

const (
	modeList mode = iota
	modeForm
)

const displayDateLayout = "Jan 2, 2006"

type Model struct {
	store      todo.Repository
	cfg        config.Config
	log        *log.Logger
	all        []todo.Task
	tasks      []todo.Task
	cursor     int
	mode       mode
	form       *form
	filter     string
	status     string
	confirmDel bool
	pendingDel *todo.Task
	width      int

	today func() string
	clip  func(string) error
}

func New(store todo.Repository, cfg config.Config, logger *log.Logger) Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := Model{
		store:  store,
		cfg:    cfg,
		log:    logger,
		mode:   modeList,
		filter: strings.ToLower(cfg.DefaultFilter),
		status: fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to delete.", cfg.Keys.Add, cfg.Keys.Delete),
		today:  dateonly.Today,
		clip:   clipboard.WriteAll,
	}
	if err := m.reload(); err != nil {
		m.status = fmt.Sprintf("load failed: %v", err)
	}
	return m
}

func Run(store todo.Repository, cfg config.Config, logger *log.Logger, firstLaunch bool) error {
	m := New(store, cfg, logger)
	if firstLaunch {
		m.status = fmt.Sprintf("Welcome! A default config was written. Press '%s' to add your first todo.", cfg.Keys.Add)
	}
	program := tea.NewProgram(m)
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.form != nil {
			m.form.setWidth(msg.Width)
		}
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Down, "down":
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.tasks))
		}
	case m.cfg.Keys.Add:
		m.form = newCreateForm(m.width)
		m.mode = modeForm
		m.status = "Create: tab to move, enter to save, esc to cancel"
	case m.cfg.Keys.Edit:
		t, ok := m.selected()
		if !ok {
			m.status = "No todos to edit"
			return m, nil
		}
		m.form = newEditForm(t, m.width)
		m.mode = modeForm
		m.status = "Edit: tab to move, space toggles completed, enter to save, esc to cancel"
	case m.cfg.Keys.Toggle:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.store.ToggleCompletion(t.ID); err != nil {
			m.fail("toggle failed", err)
			return m, nil
		}
		m.refresh("Toggled todo")
	case m.cfg.Keys.Delete:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
	case m.cfg.Keys.Detail:
		t, ok := m.selected()
		if !ok {
			m.status = "No todos"
			return m, nil
		}
		m.status = m.detailLine(t)
	case m.cfg.Keys.Filter:
		m.filter = nextFilter(m.filter)
		m.applyFilter()
		m.status = "Showing " + m.filter
	case m.cfg.Keys.Yank:
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.clip(t.Title); err != nil {
			m.fail("copy failed", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Copied \"%s\"", t.Title)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.cfg.Keys.Cancel:
		m.closeForm()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm:
		return m.submitForm()
	case m.cfg.Keys.ClearDue:
		m.form.clearDue()
		m.status = "Due date cleared"
		return m, nil
	case "tab":
		return m, m.form.next()
	case "shift+tab":
		return m, m.form.prev()
	default:
		return m, m.form.update(msg)
	}
}

// submitForm validates the title and hands the rest to the store. An
// unparseable due date is passed through; the store drops it.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	title, desc, due := f.values()
	if err := todo.ValidateTitle(title); err != nil {
		f.titleErr = titleRequired
		m.status = titleRequired
		return m, f.setFocus(fieldTitle)
	}

	var id string
	switch f.mode {
	case formCreate:
		created, err := m.store.Add(title, desc, due)
		if err != nil {
			m.fail("save failed", err)
			return m, nil
		}
		id = created.ID
		m.status = "Added todo"
	case formEdit:
		completed := f.completed
		err := m.store.Edit(f.taskID, todo.Update{
			Title:       &title,
			Description: &desc,
			Completed:   &completed,
			DueDate:     &due,
		})
		if err != nil {
			m.fail("save failed", err)
			return m, nil
		}
		id = f.taskID
		m.status = "Saved todo"
	}
	m.closeForm()

	if err := m.reload(); err != nil {
		m.fail("reload failed", err)
		return m, nil
	}
	if i := slices.IndexFunc(m.tasks, func(t todo.Task) bool { return t.ID == id }); i >= 0 {
		m.cursor = i
	}
	return m, nil
}

func (m *Model) closeForm() {
	m.form = nil
	m.mode = modeList
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
		id := m.pendingDel.ID
		m.confirmDel = false
		m.pendingDel = nil
		if err := m.store.Delete(id); err != nil {
			m.fail("delete failed", err)
			return m, nil
		}
		m.refresh("Deleted todo")
		return m, nil
	default:
		return m, nil
	}
}

// refresh reloads after a mutation and sets ok as the status on success.
func (m *Model) refresh(ok string) {
	if err := m.reload(); err != nil {
		m.fail("reload failed", err)
		return
	}
	m.status = ok
}

func (m *Model) reload() error {
	tasks, err := m.store.Tasks()
	if err != nil {
		return err
	}
	m.all = tasks
	m.applyFilter()
	return nil
}

func (m *Model) applyFilter() {
	m.tasks = filterTasks(m.all, m.filter)
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m *Model) fail(what string, err error) {
	m.status = fmt.Sprintf("%s: %v", what, err)
	m.log.Error(what, "err", err)
}

func (m Model) selected() (todo.Task, bool) {
	if len(m.tasks) == 0 {
		return todo.Task{}, false
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Your Todos"))
	b.WriteString(fmt.Sprintf("  [%s] %d of %d", m.filter, len(m.tasks), len(m.all)))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		if len(m.all) == 0 {
			b.WriteString(fmt.Sprintf("No todos yet. Press '%s' to add one.", m.cfg.Keys.Add))
		} else {
			b.WriteString("No todos match this filter.")
		}
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("---\n")
	if m.form != nil {
		b.WriteString(m.form.view())
	} else {
		b.WriteString(m.renderDetailPanel())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(renderHelp(m.cfg.Keys)))

	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s move • %s add • %s edit • %s detail • space toggle • %s delete • %s filter • %s copy • %s quit",
		k.Up, k.Down, k.Add, k.Edit, k.Detail, k.Delete, k.Filter, k.Yank, k.Quit)
}

func (m Model) renderTaskList() string {
	today := m.today()
	var b strings.Builder
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = cursorStyle.Render(">")
		}

		checkbox := "[ ]"
		title := t.Title
		if t.Completed {
			checkbox = "[x]"
			title = doneTitleStyle.Render(title)
		}

		line := fmt.Sprintf("%s %s %s", cursor, checkbox, title)
		if chip := dueChip(t, today); chip != "" {
			line += " " + chip
		}
		b.WriteString(line)
		b.WriteString("\n")
		if t.Description != "" {
			b.WriteString("      ")
			b.WriteString(descStyle.Render(firstLine(t.Description)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderDetailPanel() string {
	t, ok := m.selected()
	if !ok {
		return "No todo selected"
	}
	var b strings.Builder
	b.WriteString("Details\n")
	b.WriteString(fmt.Sprintf("Title       : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Description : %s\n", emptyPlaceholder(t.Description)))
	b.WriteString(fmt.Sprintf("Status      : %s\n", humanDone(t.Completed)))
	b.WriteString(fmt.Sprintf("Due         : %s\n", emptyPlaceholder(formatDue(t.DueDate))))
	b.WriteString(fmt.Sprintf("Created     : %s", humanize.Time(t.CreatedAt)))
	return b.String()
}

func (m Model) detailLine(t todo.Task) string {
	info := fmt.Sprintf("%s • %s", t.Title, humanDone(t.Completed))
	if t.HasDueDate() {
		info += " • due " + formatDue(t.DueDate)
		if !t.Completed && dateonly.IsOverdueOn(t.DueDate, m.today()) {
			info += " (overdue)"
		}
	}
	info += " • created " + humanize.Time(t.CreatedAt)
	return info
}

// dueChip renders the due date; it is highlighted only while the task is
// still open and the date has passed.
func dueChip(t todo.Task, today string) string {
	if !t.HasDueDate() {
		return ""
	}
	if !t.Completed && dateonly.IsOverdueOn(t.DueDate, today) {
		return overdueStyle.Render("(overdue " + formatDue(t.DueDate) + ")")
	}
	return dueChipStyle.Render("(due " + formatDue(t.DueDate) + ")")
}

func formatDue(due string) string {
	d, ok := dateonly.Parse(due)
	if !ok {
		return ""
	}
	return d.Format(displayDateLayout)
}

func filterTasks(tasks []todo.Task, filter string) []todo.Task {
	if filter == config.FilterAll || filter == "" {
		return tasks
	}
	wantDone := filter == config.FilterDone
	out := make([]todo.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Completed == wantDone {
			out = append(out, t)
		}
	}
	return out
}

func nextFilter(f string) string {
	switch f {
	case config.FilterAll:
		return config.FilterPending
	case config.FilterPending:
		return config.FilterDone
	default:
		return config.FilterAll
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
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
		return "completed"
	}
	return "not completed"
}
