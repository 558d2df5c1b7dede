// Package repository defines the storage boundary of the task list store.
// The store never talks to a backend directly; it loads and saves whole
// snapshots through a Repository.
package repository

import (
	"context"
	"errors"

	"tasklist/internal/task"
)

// Storage keys of the persisted snapshot.
const (
	// TasksKey holds the open task list.
	TasksKey = "tasks"

	// CompletedTasksKey holds the completed task list (two-state variant).
	CompletedTasksKey = "completedTasks"
)

// ErrNotFound is returned by KeyValue.Get implementations that prefer an
// error over the ok flag. The adapter treats it as an absent key.
var ErrNotFound = errors.New("not found")

// Snapshot is the full persisted state of a task list.
type Snapshot struct {
	Tasks     []task.Task
	Completed []task.Task // two-state variant only
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Tasks:     cloneTasks(s.Tasks),
		Completed: cloneTasks(s.Completed),
	}
}

func cloneTasks(tasks []task.Task) []task.Task {
	if tasks == nil {
		return nil
	}
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	return out
}

// Repository loads and saves whole task list snapshots.
type Repository interface {
	// Load returns the persisted snapshot. Absent data yields an empty
	// snapshot and no error.
	Load(ctx context.Context) (Snapshot, error)

	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snap Snapshot) error

	// Close releases backend resources.
	Close() error
}

// KeyValue is a string-keyed storage slot holding raw values, the shape of
// browser local storage.
type KeyValue interface {
	// Get returns the value stored under key. ok is false if the key is
	// absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// SetMany replaces the values of every key in values as one write:
	// either all keys change or none do.
	SetMany(ctx context.Context, values map[string][]byte) error

	// Close releases backend resources.
	Close() error
}
