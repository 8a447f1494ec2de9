package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonrobin/tickbox/pkg/logger"
	"github.com/harrisonrobin/tickbox/pkg/model"
)

// DefaultFile is the backing file used when no path is configured, relative to the working directory.
const DefaultFile = "tasks.json"

type EventKind string

const (
	EventAdded    EventKind = "added"
	EventUpdated  EventKind = "updated"
	EventDone     EventKind = "done"
	EventDeleted  EventKind = "deleted"
	EventImported EventKind = "imported"
)

// Event is delivered to observers after a mutation has been persisted.
type Event struct {
	Kind EventKind
	Task model.Task
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Store owns the task collection and its backing file. It is not safe for
// concurrent use; callers that share it across goroutines serialize access.
type Store struct {
	path      string
	tasks     []model.Task // insertion order
	observers []func(Event)
	now       func() time.Time
	newID     func() string
	log       *slog.Logger
}

func New(path string, opts ...Option) *Store {
	if path == "" {
		path = DefaultFile
	}
	s := &Store{
		path:  path,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Len() int {
	return len(s.tasks)
}

// Subscribe registers fn to be called after every successful mutation.
func (s *Store) Subscribe(fn func(Event)) {
	s.observers = append(s.observers, fn)
}

// Load replaces the in-memory collection with the contents of the backing file.
// A missing file or malformed document yields an empty collection and no error.
func (s *Store) Load() ([]model.Task, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.tasks = nil
			return s.Sorted(), nil
		}
		return nil, &StorageError{Op: "open", Path: s.path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}

	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		// TODO: copy the unreadable file aside before the next save overwrites it.
		s.log.Warn("task file is not valid, starting with an empty list", "path", s.path, "error", err)
		tasks = nil
	}
	s.tasks = tasks
	s.log.Debug("tasks loaded", "path", s.path, "count", len(s.tasks))
	return s.Sorted(), nil
}

// Save serializes the whole collection, overwriting the backing file.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &StorageError{Op: "create directory for", Path: s.path, Err: err}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return &StorageError{Op: "open", Path: s.path, Err: err}
	}

	tasks := s.tasks
	if tasks == nil {
		tasks = []model.Task{}
	}
	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(tasks); err != nil {
		f.Close()
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &StorageError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// Sorted returns a copy of all tasks, newest first. Ties keep insertion order.
func (s *Store) Sorted() []model.Task {
	out := slices.Clone(s.tasks)
	if out == nil {
		out = []model.Task{}
	}
	slices.SortStableFunc(out, func(a, b model.Task) int {
		return b.DateAdded.Compare(a.DateAdded.Time)
	})
	return out
}

func (s *Store) Get(id string) (model.Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.tasks[i], nil
}

// Resolve expands a unique id prefix to a full id.
func (s *Store) Resolve(prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}
	var match string
	for _, t := range s.tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	return match, nil
}

func (s *Store) Add(title, description string) (model.Task, error) {
	if isBlank(title) || isBlank(description) {
		return model.Task{}, ErrValidation
	}

	task := model.Task{
		ID:          s.newID(),
		Title:       title,
		Description: description,
		DateAdded:   model.NewTimestamp(s.now()),
	}

	s.tasks = append(s.tasks, task)
	if err := s.Save(); err != nil {
		s.tasks = s.tasks[:len(s.tasks)-1]
		return model.Task{}, err
	}

	s.notify(Event{Kind: EventAdded, Task: task})
	return task, nil
}

func (s *Store) Update(id, title, description string) error {
	if isBlank(title) || isBlank(description) {
		return ErrValidation
	}
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	old := s.tasks[i]
	if old.Title == title && old.Description == description {
		return ErrNoChange
	}

	s.tasks[i].Title = title
	s.tasks[i].Description = description
	if err := s.Save(); err != nil {
		s.tasks[i] = old
		return err
	}

	s.notify(Event{Kind: EventUpdated, Task: s.tasks[i]})
	return nil
}

func (s *Store) SetDone(id string, isDone bool) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	old := s.tasks[i]
	s.tasks[i].IsDone = isDone
	if err := s.Save(); err != nil {
		s.tasks[i] = old
		return err
	}

	s.notify(Event{Kind: EventDone, Task: s.tasks[i]})
	return nil
}

// Delete removes the task with the given id. An unknown id is not an error.
func (s *Store) Delete(id string) error {
	i := s.indexOf(id)

	old := s.tasks
	var removed model.Task
	if i >= 0 {
		removed = s.tasks[i]
		s.tasks = slices.Delete(slices.Clone(s.tasks), i, i+1)
	}
	if err := s.Save(); err != nil {
		s.tasks = old
		return err
	}

	if i >= 0 {
		s.notify(Event{Kind: EventDeleted, Task: removed})
	}
	return nil
}

// Import adds drafts in one batch and persists once. Drafts with an empty
// title or description are skipped.
func (s *Store) Import(drafts []model.Draft) (int, error) {
	before := len(s.tasks)
	for _, d := range drafts {
		if isBlank(d.Title) || isBlank(d.Description) {
			s.log.Warn("skipping draft with empty field", "title", d.Title, "source", d.Source)
			continue
		}
		added := d.Added
		if added.IsZero() {
			added = s.now()
		}
		s.tasks = append(s.tasks, model.Task{
			ID:          s.newID(),
			Title:       d.Title,
			Description: d.Description,
			IsDone:      d.Done,
			DateAdded:   model.NewTimestamp(added.Local()),
		})
	}

	imported := s.tasks[before:]
	if len(imported) == 0 {
		return 0, nil
	}
	if err := s.Save(); err != nil {
		s.tasks = s.tasks[:before]
		return 0, err
	}

	for _, t := range imported {
		s.notify(Event{Kind: EventImported, Task: t})
	}
	return len(imported), nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

func (s *Store) notify(e Event) {
	for _, fn := range s.observers {
		fn(e)
	}
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}

// IsNotice reports whether err is an expected, user-facing outcome rather than a fault.
func IsNotice(err error) bool {
	return errors.Is(err, ErrNoChange) || errors.Is(err, ErrValidation)
}
