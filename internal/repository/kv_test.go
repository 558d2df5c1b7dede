package repository_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"tasklist/internal/repository"
	"tasklist/internal/store"
	"tasklist/internal/task"
	"tasklist/internal/testutil"
)

func TestLoad_EmptyStorage(t *testing.T) {
	kv := testutil.NewFakeKeyValue()
	repo := repository.NewKV(kv, task.VariantCompletion, nil)

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Tasks) != 0 || len(snap.Completed) != 0 {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestLoad_MalformedPayloadIsEmpty(t *testing.T) {
	kv := testutil.NewFakeKeyValue()
	kv.Put(repository.TasksKey, "{not json")

	var logs bytes.Buffer
	repo := repository.NewKV(kv, task.VariantStatus, log.New(&logs))

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Tasks) != 0 {
		t.Errorf("expected no tasks, got %v", snap.Tasks)
	}
	if !strings.Contains(logs.String(), "ignoring unreadable stored value") {
		t.Errorf("expected a warning, got %q", logs.String())
	}
}

func TestLoad_DropsMalformedRecords(t *testing.T) {
	kv := testutil.NewFakeKeyValue()
	kv.Put(repository.TasksKey, `[{"text":"a","status":null},{"text":"","status":null},{"text":"b","status":"Done"}]`)

	var logs bytes.Buffer
	repo := repository.NewKV(kv, task.VariantStatus, log.New(&logs))

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff([]string{"a"}, testutil.Texts(snap.Tasks)); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
	if n := strings.Count(logs.String(), "dropping malformed task record"); n != 2 {
		t.Errorf("expected 2 warnings, got %d:\n%s", n, logs.String())
	}
}

func TestLoad_StatusVariantIgnoresCompletedKey(t *testing.T) {
	kv := testutil.NewFakeKeyValue()
	kv.Put(repository.CompletedTasksKey, `[{"text":"x","completed":true}]`)

	snap, err := repository.NewKV(kv, task.VariantStatus, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Completed) != 0 {
		t.Errorf("expected completed key to be ignored, got %v", snap.Completed)
	}
}

func TestLoad_ReadErrorPropagates(t *testing.T) {
	kv := testutil.NewFakeKeyValue()
	kv.GetErr = errors.New("io failure")

	_, err := repository.NewKV(kv, task.VariantStatus, nil).Load(context.Background())
	if !errors.Is(err, kv.GetErr) {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
	if !strings.Contains(err.Error(), "read tasks") {
		t.Errorf("expected key in message, got %q", err.Error())
	}
}

func TestLoad_NotFoundIsAbsent(t *testing.T) {
	kv := testutil.NewFakeKeyValue()
	kv.GetErr = repository.ErrNotFound

	snap, err := repository.NewKV(kv, task.VariantStatus, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(snap.Tasks) != 0 {
		t.Errorf("expected no tasks, got %v", snap.Tasks)
	}
}

func TestSave_StatusVariantWritesTasksOnly(t *testing.T) {
	kv := testutil.NewFakeKeyValue()
	repo := repository.NewKV(kv, task.VariantStatus, nil)

	snap := repository.Snapshot{Tasks: []task.Task{{ID: "id-1", Text: "a", Status: task.StatusCompleted}}}
	if err := repo.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := kv.Value(repository.TasksKey)
	want := `[{"text":"a","status":"Completed","id":"id-1"}]`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if kv.Writes(repository.CompletedTasksKey) != 0 {
		t.Error("expected completedTasks to be left alone")
	}
}

func TestSave_CompletionVariantWritesBothKeys(t *testing.T) {
	kv := testutil.NewFakeKeyValue()
	repo := repository.NewKV(kv, task.VariantCompletion, nil)

	snap := repository.Snapshot{
		Tasks:     []task.Task{{ID: "id-1", Text: "a"}},
		Completed: nil,
	}
	if err := repo.Save(context.Background(), snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tasks, _ := kv.Value(repository.TasksKey)
	if tasks != `[{"text":"a","completed":false,"id":"id-1"}]` {
		t.Errorf("unexpected tasks value %s", tasks)
	}
	completed, ok := kv.Value(repository.CompletedTasksKey)
	if !ok || completed != "[]" {
		t.Errorf("expected empty completed array, got %q (present=%v)", completed, ok)
	}
}

func TestSave_WriteErrorPropagates(t *testing.T) {
	kv := testutil.NewFakeKeyValue()
	kv.SetErr[repository.CompletedTasksKey] = errors.New("quota exceeded")
	repo := repository.NewKV(kv, task.VariantCompletion, nil)

	err := repo.Save(context.Background(), repository.Snapshot{})
	if !errors.Is(err, kv.SetErr[repository.CompletedTasksKey]) {
		t.Fatalf("expected wrapped write error, got %v", err)
	}
	if !strings.Contains(err.Error(), "completedTasks") {
		t.Errorf("expected key in message, got %q", err.Error())
	}
}

func TestSave_FailedWriteKeepsBothKeys(t *testing.T) {
	ctx := context.Background()
	kv := testutil.NewFakeKeyValue()
	kv.Put(repository.TasksKey, `[{"text":"a","completed":false,"id":"id-a"},{"text":"b","completed":false,"id":"id-b"}]`)
	kv.Put(repository.CompletedTasksKey, `[]`)
	before, _ := kv.Value(repository.TasksKey)

	st, err := store.Open(ctx, repository.NewKV(kv, task.VariantCompletion, nil), task.VariantCompletion)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	kv.SetErr[repository.CompletedTasksKey] = errors.New("quota exceeded")

	if _, err := st.Complete(ctx, 0); err == nil {
		t.Fatal("expected Complete to fail")
	}
	if got, _ := kv.Value(repository.TasksKey); got != before {
		t.Errorf("tasks written despite failed save: %s", got)
	}
	if kv.Writes(repository.TasksKey) != 0 {
		t.Errorf("expected no writes to %s, got %d", repository.TasksKey, kv.Writes(repository.TasksKey))
	}

	delete(kv.SetErr, repository.CompletedTasksKey)
	reopened, err := store.Open(ctx, repository.NewKV(kv, task.VariantCompletion, nil), task.VariantCompletion)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, testutil.Texts(reopened.Tasks())); diff != "" {
		t.Errorf("tasks after reopen (-want +got):\n%s", diff)
	}
	if got := reopened.CompletedTasks(); len(got) != 0 {
		t.Errorf("expected no completed tasks, got %v", testutil.Texts(got))
	}
}

func TestClose(t *testing.T) {
	kv := testutil.NewFakeKeyValue()
	if err := repository.NewKV(kv, task.VariantStatus, nil).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !kv.Closed {
		t.Error("expected key-value slot to be closed")
	}
}
