package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"tasklist/internal/dateonly"
	"tasklist/internal/todo"
)

const maxIDAttempts = 8

// Store is a todo.Repository on a private in-memory SQLite database. The
// data lives only as long as the Store; Close discards it.
type Store struct {
	db    *sql.DB
	ids   todo.IDGenerator
	clock todo.Clock
	log   *log.Logger
}

var _ todo.Repository = (*Store)(nil)

func Open(opts todo.Options) (*Store, error) {
	opts = opts.WithDefaults()
	db, err := sql.Open("sqlite", sessionDSN("tasklist-"+uuid.NewString()))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	// the in-memory database disappears when its last connection closes
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &Store{db: db, ids: opts.IDs, clock: opts.Clock, log: opts.Logger}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed INTEGER NOT NULL DEFAULT 0,
	due_date TEXT DEFAULT NULL,
	created_at TEXT NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Store) Tasks() ([]todo.Task, error) {
	rows, err := s.db.Query(`SELECT id, title, description, completed, due_date, created_at FROM tasks ORDER BY seq;`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []todo.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) Add(title, description, dueDate string) (todo.Task, error) {
	id, err := s.freshID()
	if err != nil {
		return todo.Task{}, err
	}
	t := todo.Task{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedAt:   s.clock(),
		DueDate:     dateonly.Sanitize(dueDate),
	}
	_, err = s.db.Exec(`INSERT INTO tasks (id, title, description, completed, due_date, created_at) VALUES (?, ?, ?, 0, ?, ?);`,
		t.ID, t.Title, t.Description, nullDate(t.DueDate), t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return todo.Task{}, fmt.Errorf("insert task: %w", err)
	}
	s.log.Debug("task added", "id", t.ID, "due", t.DueDate)
	return t, nil
}

func (s *Store) Edit(id string, u todo.Update) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin edit: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT id, title, description, completed, due_date, created_at FROM tasks WHERE id = ?;`, id)
	current, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Debug("update: no such task", "id", id)
		return nil
	}
	if err != nil {
		return err
	}

	next := u.Apply(current)
	_, err = tx.Exec(`UPDATE tasks SET title = ?, description = ?, completed = ?, due_date = ? WHERE id = ?;`,
		next.Title, next.Description, boolToInt(next.Completed), nullDate(dateonly.Sanitize(next.DueDate)), id)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit edit: %w", err)
	}
	s.log.Debug("task updated", "id", id, "completed", next.Completed, "due", next.DueDate)
	return nil
}

func (s *Store) ToggleCompletion(id string) error {
	res, err := s.db.Exec(`UPDATE tasks SET completed = 1 - completed WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("toggle task: %w", err)
	}
	s.logAffected(res, "task toggled", id)
	return nil
}

func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.logAffected(res, "task deleted", id)
	return nil
}

func (s *Store) logAffected(res sql.Result, msg, id string) {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.log.Debug("no such task", "id", id)
		return
	}
	s.log.Debug(msg, "id", id)
}

func (s *Store) freshID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.ids()
		if id == "" {
			continue
		}
		var exists int
		err := s.db.QueryRow(`SELECT COUNT(1) FROM tasks WHERE id = ?;`, id).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("check task id: %w", err)
		}
		if exists == 0 {
			return id, nil
		}
	}
	return "", todo.ErrIDExhausted
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (todo.Task, error) {
	var t todo.Task
	var completed int
	var due sql.NullString
	var created string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &completed, &due, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, err
		}
		return t, fmt.Errorf("scan task: %w", err)
	}
	t.Completed = completed == 1
	if due.Valid {
		t.DueDate = dateonly.Sanitize(due.String)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, created); err == nil {
		t.CreatedAt = parsed
	}
	return t, nil
}

func nullDate(d string) sql.NullString {
	if d == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: d, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// sessionDSN names a shared-cache in-memory database so every pooled
// connection sees the same data.
func sessionDSN(name string) string {
	u := url.URL{
		Scheme: "file",
		Opaque: name,
	}
	q := u.Query()
	q.Set("mode", "memory")
	q.Set("cache", "shared")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
