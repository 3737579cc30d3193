package todo_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"tasklist/internal/todo"
	"tasklist/internal/todo/todotest"
)

func TestStore_Contract(t *testing.T) {
	todotest.RunContract(t, func(t *testing.T, opts todo.Options) todo.Repository {
		return todo.NewStore(opts)
	})
}

func TestStore_DefaultOptions(t *testing.T) {
	s := todo.NewStore(todo.Options{})
	a, err := s.Add("a", "", "")
	if err != nil {
		t.Fatalf("Add() err = %v", err)
	}
	b, _ := s.Add("b", "", "")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("Add() ids = %q, %q, want distinct non-empty", a.ID, b.ID)
	}
	if a.CreatedAt.IsZero() {
		t.Fatal("Add() CreatedAt is zero")
	}
}

func TestStore_RetriesCollidingIDs(t *testing.T) {
	ids := []string{"dup", "dup", "dup", "fresh"}
	n := 0
	s := todo.NewStore(todo.Options{IDs: func() string {
		id := ids[n]
		n++
		return id
	}})
	first, _ := s.Add("a", "", "")
	second, err := s.Add("b", "", "")
	if err != nil {
		t.Fatalf("Add() err = %v, want nil", err)
	}
	if first.ID != "dup" || second.ID != "fresh" {
		t.Fatalf("ids = %q, %q, want dup, fresh", first.ID, second.ID)
	}
}

func TestStore_IDExhausted(t *testing.T) {
	s := todo.NewStore(todo.Options{IDs: func() string { return "same" }})
	if _, err := s.Add("a", "", ""); err != nil {
		t.Fatalf("Add() err = %v", err)
	}
	_, err := s.Add("b", "", "")
	if !errors.Is(err, todo.ErrIDExhausted) {
		t.Fatalf("Add() err = %v, want %v", err, todo.ErrIDExhausted)
	}
	tasks, _ := s.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("Tasks() len = %d, want 1", len(tasks))
	}
}

func TestStore_ConcurrentOperations(t *testing.T) {
	s := todo.NewStore(todo.Options{})

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			task, _ := s.Add("x", "", "")
			_ = s.ToggleCompletion(task.ID)
		}()
	}
	wg.Wait()

	tasks, _ := s.Tasks()
	if len(tasks) != n {
		t.Fatalf("Tasks() len = %d, want %d", len(tasks), n)
	}
	for _, task := range tasks {
		if !task.Completed {
			t.Fatalf("task %s not completed", task.ID)
		}
	}
}

func TestStore_LogsMutations(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	s := todo.NewStore(todo.Options{IDs: todotest.SeqIDs(), Logger: logger})

	_, _ = s.Add("a", "", "")
	_ = s.Delete("missing")

	out := buf.String()
	if !strings.Contains(out, "task added") || !strings.Contains(out, "id-1") {
		t.Fatalf("log output = %q, want add entry with id", out)
	}
	if !strings.Contains(out, "no such task") {
		t.Fatalf("log output = %q, want missing-id entry", out)
	}
}

func TestValidateTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		if err := todo.ValidateTitle(title); !errors.Is(err, todo.ErrEmptyTitle) {
			t.Fatalf("ValidateTitle(%q) = %v, want %v", title, err, todo.ErrEmptyTitle)
		}
	}
	if err := todo.ValidateTitle(" ok "); err != nil {
		t.Fatalf("ValidateTitle(ok) = %v, want nil", err)
	}
}

func TestUpdate_ApplyKeepsIdentity(t *testing.T) {
	orig := todo.Task{ID: "x", Title: "t", CreatedAt: todotest.Epoch, DueDate: "2099-01-01"}
	title := "new"
	got := todo.Update{Title: &title}.Apply(orig)
	if got.ID != orig.ID || !got.CreatedAt.Equal(orig.CreatedAt) || got.DueDate != orig.DueDate {
		t.Fatalf("Apply() = %+v, want identity and due date kept", got)
	}
	if got.Title != "new" {
		t.Fatalf("Apply() Title = %q, want %q", got.Title, "new")
	}
}
