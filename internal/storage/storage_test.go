package storage

import (
	"strings"
	"testing"

	"tasklist/internal/todo"
	"tasklist/internal/todo/todotest"
)

func openTest(t *testing.T, opts todo.Options) *Store {
	t.Helper()
	s, err := Open(opts)
	if err != nil {
		t.Fatalf("Open() err = %v, want nil", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	todotest.RunContract(t, func(t *testing.T, opts todo.Options) todo.Repository {
		return openTest(t, opts)
	})
}

func TestOpen_SessionsAreIsolated(t *testing.T) {
	a := openTest(t, todo.Options{})
	b := openTest(t, todo.Options{})

	if _, err := a.Add("only in a", "", ""); err != nil {
		t.Fatalf("Add() err = %v", err)
	}
	tasks, err := b.Tasks()
	if err != nil {
		t.Fatalf("Tasks() err = %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("second session sees %d tasks, want 0", len(tasks))
	}
}

func TestStore_IDExhausted(t *testing.T) {
	s := openTest(t, todo.Options{IDs: func() string { return "same" }})
	if _, err := s.Add("a", "", ""); err != nil {
		t.Fatalf("Add() err = %v", err)
	}
	if _, err := s.Add("b", "", ""); err != todo.ErrIDExhausted {
		t.Fatalf("Add() err = %v, want %v", err, todo.ErrIDExhausted)
	}
}

func TestStore_GarbageDueDateInTableReadsAsAbsent(t *testing.T) {
	s := openTest(t, todo.Options{IDs: todotest.SeqIDs()})
	created, _ := s.Add("t", "", "2099-12-31")
	if _, err := s.db.Exec(`UPDATE tasks SET due_date = 'not-a-date' WHERE id = ?;`, created.ID); err != nil {
		t.Fatalf("Exec() err = %v", err)
	}
	tasks, err := s.Tasks()
	if err != nil {
		t.Fatalf("Tasks() err = %v", err)
	}
	if tasks[0].DueDate != "" {
		t.Fatalf("DueDate = %q, want absent", tasks[0].DueDate)
	}
}

func TestStore_ClosedStoreReturnsErrors(t *testing.T) {
	s, err := Open(todo.Options{})
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	s.Close()

	if _, err := s.Tasks(); err == nil {
		t.Fatal("Tasks() err = nil after Close, want non-nil")
	}
	if err := s.Delete("x"); err == nil {
		t.Fatal("Delete() err = nil after Close, want non-nil")
	}
}

func TestSessionDSN(t *testing.T) {
	dsn := sessionDSN("tasklist-abc")
	if !strings.HasPrefix(dsn, "file:tasklist-abc?") {
		t.Fatalf("sessionDSN() = %q, want file:tasklist-abc?...", dsn)
	}
	for _, part := range []string{"mode=memory", "cache=shared", "_pragma="} {
		if !strings.Contains(dsn, part) {
			t.Fatalf("sessionDSN() = %q, missing %q", dsn, part)
		}
	}
}
