// Package store implements the task list state machine: an in-memory ordered
// task collection that is written through to a repository after every
// mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"tasklist/internal/repository"
	"tasklist/internal/task"
)

var (
	// ErrOutOfRange is returned when a position does not address a task.
	ErrOutOfRange = errors.New("task index out of range")

	// ErrUnsupported is returned when an operation does not exist for the
	// store's variant.
	ErrUnsupported = errors.New("operation not supported by variant")

	// ErrNotFound is returned when a task id does not match any task.
	ErrNotFound = errors.New("task not found")

	// ErrAmbiguous is returned when an id prefix matches several tasks.
	ErrAmbiguous = errors.New("ambiguous task id")
)

// MinIDPrefix is the shortest id prefix Resolve accepts.
const MinIDPrefix = 6

// Store holds the task list for one session.
type Store struct {
	mu        sync.Mutex
	repo      repository.Repository
	variant   task.Variant
	logger    *log.Logger
	tasks     []task.Task
	completed []task.Task

	subMu   sync.Mutex
	subs    map[int]func(repository.Snapshot)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open creates a store for variant and initializes it from repo.
func Open(ctx context.Context, repo repository.Repository, variant task.Variant, opts ...Option) (*Store, error) {
	s := &Store{
		repo:    repo,
		variant: variant,
		logger:  log.New(io.Discard),
		subs:    make(map[int]func(repository.Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	s.tasks = snap.Tasks
	if variant == task.VariantCompletion {
		s.completed = snap.Completed
	}

	s.logger.Debug("loaded tasks", "variant", variant, "tasks", len(s.tasks), "completed", len(s.completed))
	return s, nil
}

// Variant returns the store's variant.
func (s *Store) Variant() task.Variant {
	return s.variant
}

// Tasks returns a copy of the open task list.
func (s *Store) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.tasks)
}

// CompletedTasks returns a copy of the completed task list. It is always
// empty for the four-state variant.
func (s *Store) CompletedTasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.completed)
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() repository.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return repository.Snapshot{Tasks: clone(s.tasks), Completed: clone(s.completed)}
}

// Add appends a task with the given text. Blank text is ignored: added is
// false and nothing is written.
func (s *Store) Add(ctx context.Context, text string) (t task.Task, added bool, err error) {
	if task.IsBlank(text) {
		s.logger.Debug("ignoring blank task text")
		return task.Task{}, false, nil
	}

	t, err = s.mutate(ctx, func(tasks, completed []task.Task) ([]task.Task, []task.Task, task.Task, error) {
		t := task.New(text)
		return append(clone(tasks), t), completed, t, nil
	})
	if err != nil {
		return task.Task{}, false, err
	}
	s.logger.Debug("added task", "id", t.ID)
	return t, true, nil
}

// Delete removes the task at index.
func (s *Store) Delete(ctx context.Context, index int) (task.Task, error) {
	removed, err := s.mutate(ctx, func(tasks, completed []task.Task) ([]task.Task, []task.Task, task.Task, error) {
		if err := s.checkIndex(tasks, index); err != nil {
			return nil, nil, task.Task{}, err
		}
		return removeAt(tasks, index), completed, tasks[index], nil
	})
	if err != nil {
		return task.Task{}, err
	}
	s.logger.Debug("deleted task", "id", removed.ID, "index", index)
	return removed, nil
}

// Complete moves the task at index to the end of the completed list with
// its completed flag set. Two-state variant only.
func (s *Store) Complete(ctx context.Context, index int) (task.Task, error) {
	if s.variant != task.VariantCompletion {
		return task.Task{}, fmt.Errorf("complete: %w: %s", ErrUnsupported, s.variant)
	}

	done, err := s.mutate(ctx, func(tasks, completed []task.Task) ([]task.Task, []task.Task, task.Task, error) {
		if err := s.checkIndex(tasks, index); err != nil {
			return nil, nil, task.Task{}, err
		}
		done := tasks[index]
		done.Completed = true
		return removeAt(tasks, index), append(clone(completed), done), done, nil
	})
	if err != nil {
		return task.Task{}, err
	}
	s.logger.Debug("completed task", "id", done.ID, "index", index)
	return done, nil
}

// CycleStatus advances the status of the task at index in place.
// Four-state variant only.
func (s *Store) CycleStatus(ctx context.Context, index int) (task.Task, error) {
	if s.variant != task.VariantStatus {
		return task.Task{}, fmt.Errorf("cycle status: %w: %s", ErrUnsupported, s.variant)
	}

	cycled, err := s.mutate(ctx, func(tasks, completed []task.Task) ([]task.Task, []task.Task, task.Task, error) {
		if err := s.checkIndex(tasks, index); err != nil {
			return nil, nil, task.Task{}, err
		}
		next := clone(tasks)
		next[index].Status = next[index].Status.Next()
		return next, completed, next[index], nil
	})
	if err != nil {
		return task.Task{}, err
	}
	s.logger.Debug("cycled status", "id", cycled.ID, "status", cycled.Status)
	return cycled, nil
}

// Resolve returns the current position of the open task whose id equals ref
// or starts with ref. Prefixes shorter than MinIDPrefix only match exactly.
func (s *Store) Resolve(ref string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref = strings.ToLower(strings.TrimSpace(ref))
	for i, t := range s.tasks {
		if t.ID == ref {
			return i, nil
		}
	}

	if len(ref) >= MinIDPrefix {
		match := -1
		for i, t := range s.tasks {
			if strings.HasPrefix(t.ID, ref) {
				if match >= 0 {
					return -1, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
				}
				match = i
			}
		}
		if match >= 0 {
			return match, nil
		}
	}

	return -1, fmt.Errorf("%w: %s", ErrNotFound, ref)
}

// Subscribe registers fn to be called with the new state after every
// successful mutation. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(repository.Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Close closes the repository.
func (s *Store) Close() error {
	return s.repo.Close()
}

func (s *Store) checkIndex(tasks []task.Task, index int) error {
	if index < 0 || index >= len(tasks) {
		s.logger.Debug("ignoring out of range command", "index", index, "len", len(tasks))
		return fmt.Errorf("%w: index %d", ErrOutOfRange, index)
	}
	return nil
}

type mutation func(tasks, completed []task.Task) ([]task.Task, []task.Task, task.Task, error)

// mutate computes the next state with fn, persists it and only then makes
// it current, so a failed save leaves memory and storage equal.
// Subscribers are notified after the lock is released.
func (s *Store) mutate(ctx context.Context, fn mutation) (task.Task, error) {
	s.mu.Lock()
	tasks, completed, result, err := fn(s.tasks, s.completed)
	if err != nil {
		s.mu.Unlock()
		return task.Task{}, err
	}

	snap := repository.Snapshot{Tasks: tasks, Completed: completed}
	if err := s.repo.Save(ctx, snap); err != nil {
		s.mu.Unlock()
		return task.Task{}, fmt.Errorf("save tasks: %w", err)
	}
	s.tasks = tasks
	s.completed = completed
	snap = snap.Clone()
	s.mu.Unlock()

	s.notify(snap)
	return result, nil
}

func (s *Store) notify(snap repository.Snapshot) {
	s.subMu.Lock()
	fns := make([]func(repository.Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func clone(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	return out
}

func removeAt(tasks []task.Task, index int) []task.Task {
	out := make([]task.Task, 0, len(tasks)-1)
	out = append(out, tasks[:index]...)
	return append(out, tasks[index+1:]...)
}
