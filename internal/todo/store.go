package todo

import (
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"tasklist/internal/dateonly"
)

// maxIDAttempts bounds retries when the id generator collides.
const maxIDAttempts = 8

type IDGenerator func() string

type Clock func() time.Time

// Options holds the collaborators a store consumes. Zero values are
// replaced by WithDefaults.
type Options struct {
	IDs    IDGenerator
	Clock  Clock
	Logger *log.Logger
}

func (o Options) WithDefaults() Options {
	if o.IDs == nil {
		o.IDs = uuid.NewString
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o
}

// Store keeps the session's tasks in insertion order. Each mutation builds a
// new slice, so slices handed out earlier never change.
type Store struct {
	mu    sync.Mutex
	tasks []Task
	ids   IDGenerator
	clock Clock
	log   *log.Logger
}

var _ Repository = (*Store)(nil)

func NewStore(opts Options) *Store {
	opts = opts.WithDefaults()
	return &Store{
		ids:   opts.IDs,
		clock: opts.Clock,
		log:   opts.Logger,
	}
}

func (s *Store) Tasks() ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks), nil
}

func (s *Store) Add(title, description, dueDate string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.freshID()
	if err != nil {
		return Task{}, err
	}
	t := Task{
		ID:          id,
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   s.clock(),
		DueDate:     dateonly.Sanitize(dueDate),
	}
	next := make([]Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	s.tasks = append(next, t)

	s.log.Debug("task added", "id", t.ID, "due", t.DueDate)
	return t, nil
}

func (s *Store) Edit(id string, u Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replace(id, u.Apply)
	return nil
}

func (s *Store) ToggleCompletion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replace(id, func(t Task) Task {
		t.Completed = !t.Completed
		return t
	})
	return nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index(id) < 0 {
		s.log.Debug("delete: no such task", "id", id)
		return nil
	}
	next := make([]Task, 0, len(s.tasks)-1)
	for _, t := range s.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	s.tasks = next
	s.log.Debug("task deleted", "id", id)
	return nil
}

// replace swaps in a copy of the collection with fn applied to the matching
// task. Callers hold s.mu.
func (s *Store) replace(id string, fn func(Task) Task) {
	i := s.index(id)
	if i < 0 {
		s.log.Debug("update: no such task", "id", id)
		return
	}
	next := slices.Clone(s.tasks)
	updated := fn(next[i])
	updated.ID = next[i].ID
	updated.CreatedAt = next[i].CreatedAt
	next[i] = updated
	s.tasks = next
	s.log.Debug("task updated", "id", id, "completed", updated.Completed, "due", updated.DueDate)
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

func (s *Store) freshID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.ids()
		if id != "" && s.index(id) < 0 {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
