package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasklist/internal/todo"
)

type formMode int

const (
	formCreate formMode = iota
	formEdit
)

type formField int

const (
	fieldTitle formField = iota
	fieldDescription
	fieldDue
	fieldCompleted
)

const titleRequired = "Title is required"

// form is the create/edit dialog. The completed checkbox exists only when
// editing.
type form struct {
	mode        formMode
	taskID      string
	title       textinput.Model
	description textarea.Model
	due         textinput.Model
	completed   bool
	focus       formField
	titleErr    string
}

func newCreateForm(width int) *form {
	return newForm(formCreate, todo.Task{}, width)
}

func newEditForm(t todo.Task, width int) *form {
	return newForm(formEdit, t, width)
}

func newForm(mode formMode, t todo.Task, width int) *form {
	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 256
	title.SetValue(t.Title)

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.ShowLineNumbers = false
	desc.SetHeight(3)
	desc.SetValue(t.Description)

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD (optional)"
	due.CharLimit = 10
	due.SetValue(t.DueDate)

	f := &form{
		mode:        mode,
		taskID:      t.ID,
		title:       title,
		description: desc,
		due:         due,
		completed:   t.Completed,
	}
	f.setWidth(width)
	f.setFocus(fieldTitle)
	return f
}

func (f *form) setWidth(width int) {
	if width <= 0 {
		width = 50
	}
	w := width - 10
	if w < 20 {
		w = 20
	}
	f.title.Width = w
	f.due.Width = w
	f.description.SetWidth(w)
}

func (f *form) fieldCount() int {
	if f.mode == formEdit {
		return 4
	}
	return 3
}

func (f *form) setFocus(field formField) tea.Cmd {
	f.focus = field
	f.title.Blur()
	f.description.Blur()
	f.due.Blur()
	switch field {
	case fieldTitle:
		return f.title.Focus()
	case fieldDescription:
		return f.description.Focus()
	case fieldDue:
		return f.due.Focus()
	}
	return nil
}

func (f *form) next() tea.Cmd {
	return f.setFocus(formField(wrapIndex(int(f.focus)+1, f.fieldCount())))
}

func (f *form) prev() tea.Cmd {
	return f.setFocus(formField(wrapIndex(int(f.focus)-1, f.fieldCount())))
}

func (f *form) clearDue() {
	f.due.SetValue("")
}

func (f *form) update(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
		if strings.TrimSpace(f.title.Value()) != "" {
			f.titleErr = ""
		}
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	case fieldCompleted:
		if msg.String() == " " || msg.String() == "x" {
			f.completed = !f.completed
		}
	}
	return cmd
}

// values returns the trimmed form contents.
func (f *form) values() (title, description, due string) {
	return strings.TrimSpace(f.title.Value()),
		strings.TrimSpace(f.description.Value()),
		strings.TrimSpace(f.due.Value())
}

func (f *form) heading() string {
	if f.mode == formEdit {
		return "Edit Todo"
	}
	return "Create Todo"
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(f.heading()))
	b.WriteString("\n\n")

	b.WriteString(f.label(fieldTitle, "Title *"))
	b.WriteString("\n")
	b.WriteString(f.title.View())
	b.WriteString("\n")
	if f.titleErr != "" {
		b.WriteString(errorStyle.Render(f.titleErr))
		b.WriteString("\n")
	}

	b.WriteString(f.label(fieldDescription, "Description"))
	b.WriteString("\n")
	b.WriteString(f.description.View())
	b.WriteString("\n")

	b.WriteString(f.label(fieldDue, "Due Date"))
	b.WriteString("\n")
	b.WriteString(f.due.View())
	b.WriteString("\n")

	if f.mode == formEdit {
		box := "[ ]"
		if f.completed {
			box = "[x]"
		}
		b.WriteString(f.label(fieldCompleted, fmt.Sprintf("%s Mark as completed", box)))
		b.WriteString("\n")
	}
	return dialogStyle.Render(b.String())
}

func (f *form) label(field formField, text string) string {
	if f.focus == field {
		return labelStyle.Render("> " + text)
	}
	return "  " + text
}
