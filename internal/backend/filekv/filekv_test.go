package filekv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tasklist/internal/repository"
	"tasklist/internal/store"
	"tasklist/internal/task"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "storage.json"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestGet_MissingFile(t *testing.T) {
	s := openTemp(t)

	_, ok, err := s.Get(context.Background(), "tasks")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected key to be absent")
	}
}

func TestSetGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.Set(ctx, "tasks", []byte(`[{"text":"a","status":null}]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "completedTasks", []byte(`[]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(ctx, "tasks")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != `[{"text":"a","status":null}]` {
		t.Errorf("unexpected value %s", got)
	}

	if _, err := os.Stat(s.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be renamed away, stat err: %v", err)
	}
}

func TestSetMany_WritesAllKeys(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.Set(ctx, "other", []byte(`1`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	err := s.SetMany(ctx, map[string][]byte{
		"tasks":          []byte(`[{"text":"b","completed":false}]`),
		"completedTasks": []byte(`[{"text":"a","completed":true}]`),
	})
	if err != nil {
		t.Fatalf("SetMany: %v", err)
	}

	for key, want := range map[string]string{
		"tasks":          `[{"text":"b","completed":false}]`,
		"completedTasks": `[{"text":"a","completed":true}]`,
		"other":          `1`,
	} {
		got, ok, err := s.Get(ctx, key)
		if err != nil || !ok {
			t.Fatalf("Get %s: ok=%v err=%v", key, ok, err)
		}
		if string(got) != want {
			t.Errorf("%s: expected %s, got %s", key, want, got)
		}
	}
}

func TestSetMany_UnwritableLeavesFile(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.Set(ctx, "tasks", []byte(`["a"]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// A directory at the temp path makes the write fail before the rename.
	if err := os.Mkdir(s.Path()+".tmp", 0o700); err != nil {
		t.Fatal(err)
	}

	err := s.SetMany(ctx, map[string][]byte{"tasks": []byte(`[]`), "completedTasks": []byte(`["a"]`)})
	if err == nil {
		t.Fatal("expected SetMany to fail")
	}

	got, _, err := s.Get(ctx, "tasks")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `["a"]` {
		t.Errorf("expected the old value, got %s", got)
	}
	if _, ok, _ := s.Get(ctx, "completedTasks"); ok {
		t.Error("completedTasks should not have been written")
	}
}

func TestSet_NonJSONValue(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := s.Set(ctx, "tasks", []byte("not json")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _, err := s.Get(ctx, "tasks")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `"not json"` {
		t.Errorf("expected quoted value, got %s", got)
	}
}

func TestCorruptFileIsEmpty(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	if err := os.WriteFile(s.Path(), []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, ok, err := s.Get(ctx, "tasks")
	if err != nil || ok {
		t.Fatalf("expected empty storage, got ok=%v err=%v", ok, err)
	}

	if err := s.Set(ctx, "tasks", []byte(`[]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, "tasks")
	if err != nil || !ok || string(got) != "[]" {
		t.Errorf("expected file to be rewritten, got %s ok=%v err=%v", got, ok, err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	ctx := context.Background()

	open := func() *store.Store {
		kv, err := Open(path, nil)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		s, err := store.Open(ctx, repository.NewKV(kv, task.VariantCompletion, nil), task.VariantCompletion)
		if err != nil {
			t.Fatalf("store.Open: %v", err)
		}
		return s
	}

	s := open()
	for _, text := range []string{"write report", "call bob", "water plants"} {
		if _, _, err := s.Add(ctx, text); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	if _, err := s.Complete(ctx, 1); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	reopened := open()
	if diff := cmp.Diff(s.Snapshot(), reopened.Snapshot()); diff != "" {
		t.Errorf("reloaded state mismatch (-want +got):\n%s", diff)
	}
}
