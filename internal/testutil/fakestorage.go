// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sort"
	"sync"

	"tasklist/internal/repository"
	"tasklist/internal/task"
)

// FakeKeyValue is an in-memory repository.KeyValue, the test stand-in for a
// storage backend.
type FakeKeyValue struct {
	mu     sync.RWMutex
	values map[string][]byte
	sets   map[string]int

	// Error injection for testing
	GetErr   error
	SetErr   map[string]error // key -> error
	CloseErr error
	Closed   bool
}

// NewFakeKeyValue creates an empty FakeKeyValue.
func NewFakeKeyValue() *FakeKeyValue {
	return &FakeKeyValue{
		values: make(map[string][]byte),
		sets:   make(map[string]int),
		SetErr: make(map[string]error),
	}
}

// Put stores a raw value without counting it as a write.
func (f *FakeKeyValue) Put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = []byte(value)
}

// Value returns the raw value stored under key.
func (f *FakeKeyValue) Value(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return string(v), ok
}

// Writes returns how many times key was written through Set.
func (f *FakeKeyValue) Writes(key string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sets[key]
}

// Get implements repository.KeyValue.
func (f *FakeKeyValue) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.GetErr != nil {
		return nil, false, f.GetErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set implements repository.KeyValue.
func (f *FakeKeyValue) Set(ctx context.Context, key string, value []byte) error {
	return f.SetMany(ctx, map[string][]byte{key: value})
}

// SetMany implements repository.KeyValue. If SetErr holds an error for any
// of the keys, nothing is written.
func (f *FakeKeyValue) SetMany(ctx context.Context, values map[string][]byte) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err, ok := f.SetErr[key]; ok && err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		stored := make([]byte, len(values[key]))
		copy(stored, values[key])
		f.values[key] = stored
		f.sets[key]++
	}
	return nil
}

// Close implements repository.KeyValue.
func (f *FakeKeyValue) Close() error {
	f.Closed = true
	return f.CloseErr
}

// FakeRepository is an in-memory repository.Repository.
type FakeRepository struct {
	mu    sync.RWMutex
	snap  repository.Snapshot
	saves []repository.Snapshot

	// Error injection for testing
	LoadErr error
	SaveErr error
	Closed  bool
}

// NewFakeRepository creates a FakeRepository holding the given open tasks.
func NewFakeRepository(tasks ...task.Task) *FakeRepository {
	return &FakeRepository{snap: repository.Snapshot{Tasks: tasks}}
}

// SetCompleted seeds the completed list.
func (f *FakeRepository) SetCompleted(tasks ...task.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.Completed = tasks
}

// Stored returns the currently persisted snapshot.
func (f *FakeRepository) Stored() repository.Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap.Clone()
}

// SaveCount returns the number of successful saves.
func (f *FakeRepository) SaveCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.saves)
}

// Load implements repository.Repository.
func (f *FakeRepository) Load(ctx context.Context) (repository.Snapshot, error) {
	if f.LoadErr != nil {
		return repository.Snapshot{}, f.LoadErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap.Clone(), nil
}

// Save implements repository.Repository.
func (f *FakeRepository) Save(ctx context.Context, snap repository.Snapshot) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap.Clone()
	f.saves = append(f.saves, snap.Clone())
	return nil
}

// Close implements repository.Repository.
func (f *FakeRepository) Close() error {
	f.Closed = true
	return nil
}

// Texts returns the text of each task, in order.
func Texts(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Text)
	}
	return out
}
