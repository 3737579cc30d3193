// Package todotest provides a behavioral suite that every todo.Repository
// implementation must pass, plus deterministic ids and clocks.
package todotest

import (
	"fmt"
	"testing"
	"time"

	"tasklist/internal/todo"
)

// Opener builds a fresh, empty repository for one subtest.
type Opener func(t *testing.T, opts todo.Options) todo.Repository

// SeqIDs returns a generator yielding id-1, id-2, ...
func SeqIDs() todo.IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// FixedClock always reports at.
func FixedClock(at time.Time) todo.Clock {
	return func() time.Time { return at }
}

var Epoch = time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func RunContract(t *testing.T, open Opener) {
	newRepo := func(t *testing.T) todo.Repository {
		t.Helper()
		return open(t, todo.Options{IDs: SeqIDs(), Clock: FixedClock(Epoch)})
	}

	t.Run("starts empty", func(t *testing.T) {
		r := newRepo(t)
		tasks := mustTasks(t, r)
		if len(tasks) != 0 {
			t.Fatalf("Tasks() len = %d, want 0", len(tasks))
		}
	})

	t.Run("add without due date", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Add("Test Todo", "Test Description", "")
		if err != nil {
			t.Fatalf("Add() err = %v, want nil", err)
		}
		tasks := mustTasks(t, r)
		if len(tasks) != 1 {
			t.Fatalf("Tasks() len = %d, want 1", len(tasks))
		}
		got := tasks[0]
		if got.ID != created.ID || got.ID == "" {
			t.Fatalf("Tasks()[0].ID = %q, want %q", got.ID, created.ID)
		}
		if got.Title != "Test Todo" || got.Description != "Test Description" {
			t.Fatalf("Tasks()[0] = %+v, want title/description preserved", got)
		}
		if got.Completed {
			t.Fatal("Tasks()[0].Completed = true, want false")
		}
		if got.HasDueDate() {
			t.Fatalf("Tasks()[0].DueDate = %q, want absent", got.DueDate)
		}
		if !got.CreatedAt.Equal(Epoch) {
			t.Fatalf("Tasks()[0].CreatedAt = %v, want %v", got.CreatedAt, Epoch)
		}
	})

	t.Run("add with valid due date", func(t *testing.T) {
		r := newRepo(t)
		if _, err := r.Add("With Due", "Has due", "2099-12-31"); err != nil {
			t.Fatalf("Add() err = %v", err)
		}
		if got := mustTasks(t, r)[0].DueDate; got != "2099-12-31" {
			t.Fatalf("DueDate = %q, want %q", got, "2099-12-31")
		}
	})

	t.Run("add with malformed due date", func(t *testing.T) {
		r := newRepo(t)
		for _, due := range []string{"31-12-2099", "2023-02-30", "soon"} {
			created, err := r.Add("Bad Due", "Invalid", due)
			if err != nil {
				t.Fatalf("Add(%q) err = %v, want nil", due, err)
			}
			if created.HasDueDate() {
				t.Fatalf("Add(%q) DueDate = %q, want absent", due, created.DueDate)
			}
		}
		for _, task := range mustTasks(t, r) {
			if task.HasDueDate() {
				t.Fatalf("stored DueDate = %q, want absent", task.DueDate)
			}
		}
	})

	t.Run("insertion order and unique ids", func(t *testing.T) {
		r := newRepo(t)
		titles := []string{"first", "second", "third"}
		for _, title := range titles {
			if _, err := r.Add(title, "", ""); err != nil {
				t.Fatalf("Add(%q) err = %v", title, err)
			}
		}
		tasks := mustTasks(t, r)
		seen := map[string]bool{}
		for i, task := range tasks {
			if task.Title != titles[i] {
				t.Fatalf("Tasks()[%d].Title = %q, want %q", i, task.Title, titles[i])
			}
			if seen[task.ID] {
				t.Fatalf("duplicate id %q", task.ID)
			}
			seen[task.ID] = true
		}
	})

	t.Run("toggle twice restores state", func(t *testing.T) {
		r := newRepo(t)
		created, _ := r.Add("t", "", "")
		if err := r.ToggleCompletion(created.ID); err != nil {
			t.Fatalf("ToggleCompletion() err = %v", err)
		}
		if !mustTasks(t, r)[0].Completed {
			t.Fatal("Completed = false after one toggle, want true")
		}
		if err := r.ToggleCompletion(created.ID); err != nil {
			t.Fatalf("ToggleCompletion() err = %v", err)
		}
		if mustTasks(t, r)[0].Completed {
			t.Fatal("Completed = true after two toggles, want false")
		}
	})

	t.Run("toggle only touches the matching task", func(t *testing.T) {
		r := newRepo(t)
		a, _ := r.Add("a", "", "")
		_, _ = r.Add("b", "", "")
		_ = r.ToggleCompletion(a.ID)
		tasks := mustTasks(t, r)
		if !tasks[0].Completed || tasks[1].Completed {
			t.Fatalf("Completed = [%v %v], want [true false]", tasks[0].Completed, tasks[1].Completed)
		}
	})

	t.Run("missing id is a no-op", func(t *testing.T) {
		r := newRepo(t)
		_, _ = r.Add("keep", "me", "2099-01-01")
		before := mustTasks(t, r)

		if err := r.Delete("nope"); err != nil {
			t.Fatalf("Delete(missing) err = %v, want nil", err)
		}
		if err := r.ToggleCompletion("nope"); err != nil {
			t.Fatalf("ToggleCompletion(missing) err = %v, want nil", err)
		}
		if err := r.Edit("nope", todo.Update{Title: ptr("changed")}); err != nil {
			t.Fatalf("Edit(missing) err = %v, want nil", err)
		}

		after := mustTasks(t, r)
		if len(after) != len(before) {
			t.Fatalf("Tasks() len = %d, want %d", len(after), len(before))
		}
		if !sameTask(after[0], before[0]) {
			t.Fatalf("task changed: %+v -> %+v", before[0], after[0])
		}
	})

	t.Run("delete removes only the matching task", func(t *testing.T) {
		r := newRepo(t)
		a, _ := r.Add("a", "", "")
		b, _ := r.Add("b", "", "")
		c, _ := r.Add("c", "", "")
		if err := r.Delete(b.ID); err != nil {
			t.Fatalf("Delete() err = %v", err)
		}
		tasks := mustTasks(t, r)
		if len(tasks) != 2 || tasks[0].ID != a.ID || tasks[1].ID != c.ID {
			t.Fatalf("Tasks() = %+v, want [a c]", tasks)
		}
	})

	t.Run("edit applies only provided fields", func(t *testing.T) {
		r := newRepo(t)
		created, _ := r.Add("old title", "old desc", "2099-12-31")
		if err := r.Edit(created.ID, todo.Update{Title: ptr("new title")}); err != nil {
			t.Fatalf("Edit() err = %v", err)
		}
		got := mustTasks(t, r)[0]
		if got.Title != "new title" {
			t.Fatalf("Title = %q, want %q", got.Title, "new title")
		}
		if got.Description != "old desc" || got.DueDate != "2099-12-31" || got.Completed {
			t.Fatalf("untouched fields changed: %+v", got)
		}
		if got.ID != created.ID || !got.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("identity changed: %+v -> %+v", created, got)
		}
	})

	t.Run("edit all fields", func(t *testing.T) {
		r := newRepo(t)
		created, _ := r.Add("t", "d", "")
		err := r.Edit(created.ID, todo.Update{
			Title:       ptr("T"),
			Description: ptr("D"),
			Completed:   ptr(true),
			DueDate:     ptr("2030-01-02"),
		})
		if err != nil {
			t.Fatalf("Edit() err = %v", err)
		}
		got := mustTasks(t, r)[0]
		if got.Title != "T" || got.Description != "D" || !got.Completed || got.DueDate != "2030-01-02" {
			t.Fatalf("Edit() result = %+v", got)
		}
	})

	t.Run("edit invalid due date clears it", func(t *testing.T) {
		r := newRepo(t)
		created, _ := r.Add("t", "", "2099-12-31")
		if err := r.Edit(created.ID, todo.Update{DueDate: ptr("2099-13-01")}); err != nil {
			t.Fatalf("Edit() err = %v", err)
		}
		if got := mustTasks(t, r)[0].DueDate; got != "" {
			t.Fatalf("DueDate = %q, want absent", got)
		}
	})

	t.Run("edit empty due date clears it", func(t *testing.T) {
		r := newRepo(t)
		created, _ := r.Add("t", "", "2099-12-31")
		_ = r.Edit(created.ID, todo.Update{DueDate: ptr("")})
		if got := mustTasks(t, r)[0].DueDate; got != "" {
			t.Fatalf("DueDate = %q, want absent", got)
		}
	})

	t.Run("snapshots are not mutated", func(t *testing.T) {
		r := newRepo(t)
		created, _ := r.Add("t", "", "")
		snapshot := mustTasks(t, r)
		_ = r.ToggleCompletion(created.ID)
		_ = r.Edit(created.ID, todo.Update{Title: ptr("changed")})
		_, _ = r.Add("another", "", "")
		if len(snapshot) != 1 || snapshot[0].Completed || snapshot[0].Title != "t" {
			t.Fatalf("earlier snapshot changed: %+v", snapshot)
		}
	})
}

func mustTasks(t *testing.T, r todo.Repository) []todo.Task {
	t.Helper()
	tasks, err := r.Tasks()
	if err != nil {
		t.Fatalf("Tasks() err = %v, want nil", err)
	}
	return tasks
}

func sameTask(a, b todo.Task) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.Completed == b.Completed &&
		a.DueDate == b.DueDate &&
		a.CreatedAt.Equal(b.CreatedAt)
}
