package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"tasklist/internal/task"
)

// KVRepository stores snapshots in a KeyValue slot, one JSON array per key.
type KVRepository struct {
	kv      KeyValue
	variant task.Variant
	logger  *log.Logger
}

// NewKV creates a repository over kv for the given variant.
// A nil logger discards log output.
func NewKV(kv KeyValue, variant task.Variant, logger *log.Logger) *KVRepository {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &KVRepository{kv: kv, variant: variant, logger: logger}
}

// Load reads the snapshot keys for the variant.
//
// A value that cannot be parsed as a task array is treated as absent, and
// records that do not match the variant's shape are dropped. Both cases are
// logged at warn level. Only backend read failures are returned.
func (r *KVRepository) Load(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	tasks, err := r.loadKey(ctx, TasksKey)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Tasks = tasks

	if r.variant == task.VariantCompletion {
		completed, err := r.loadKey(ctx, CompletedTasksKey)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Completed = completed
	}

	return snap, nil
}

func (r *KVRepository) loadKey(ctx context.Context, key string) ([]task.Task, error) {
	data, ok, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}

	tasks, dropped, err := task.Decode(data, r.variant)
	if err != nil {
		r.logger.Warn("ignoring unreadable stored value", "key", key, "err", err)
		return nil, nil
	}
	for _, d := range dropped {
		r.logger.Warn("dropping malformed task record", "key", key, "err", d)
	}
	return tasks, nil
}

// Save overwrites every key the variant owns in a single write, so the
// stored lists never mix two snapshots.
func (r *KVRepository) Save(ctx context.Context, snap Snapshot) error {
	keys := []string{TasksKey}
	lists := [][]task.Task{snap.Tasks}
	if r.variant == task.VariantCompletion {
		keys = append(keys, CompletedTasksKey)
		lists = append(lists, snap.Completed)
	}

	values := make(map[string][]byte, len(keys))
	for i, key := range keys {
		data, err := task.Encode(lists[i], r.variant)
		if err != nil {
			return fmt.Errorf("encode %s: %w", key, err)
		}
		values[key] = data
	}

	if err := r.kv.SetMany(ctx, values); err != nil {
		return fmt.Errorf("write %s: %w", strings.Join(keys, ", "), err)
	}
	return nil
}

// Close closes the underlying slot.
func (r *KVRepository) Close() error {
	return r.kv.Close()
}
