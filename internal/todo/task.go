// Package todo holds the task model and the in-memory task store.
package todo

import (
	"errors"
	"strings"
	"time"

	"tasklist/internal/dateonly"
)

var (
	ErrEmptyTitle  = errors.New("title is required")
	ErrIDExhausted = errors.New("could not generate a unique task id")
)

type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	// DueDate is YYYY-MM-DD or "" when the task has no due date.
	DueDate string
}

func (t Task) HasDueDate() bool {
	return t.DueDate != ""
}

// Update carries a partial edit. Nil fields are left untouched; a non-nil
// DueDate that is empty or invalid clears the due date.
type Update struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *string
}

// Apply returns t with the provided fields replaced. ID and CreatedAt are
// never changed.
func (u Update) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.DueDate != nil {
		t.DueDate = dateonly.Sanitize(*u.DueDate)
	}
	return t
}

// ValidateTitle is the caller-side check for new and edited titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Repository is the surface the UI drives. Unknown ids are never an error.
type Repository interface {
	Tasks() ([]Task, error)
	Add(title, description, dueDate string) (Task, error)
	Edit(id string, u Update) error
	ToggleCompletion(id string) error
	Delete(id string) error
}
