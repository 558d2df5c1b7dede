// Package googletasks implements repository.Repository on the Google Tasks
// API. Each storage key maps to a task list with a configurable title.
package googletasks

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/repository"
	"tasklist/internal/task"
)

const (
	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for a single load or save.
	APITimeout = 30 * time.Second
)

// Repository stores snapshots in Google Tasks lists.
type Repository struct {
	svc     *tasks.Service
	variant task.Variant
	titles  map[string]string // storage key -> list title
	logger  *log.Logger

	listIDs map[string]string // list title -> list id
}

// New creates a repository using the stored OAuth token.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Repository, error) {
	httpClient, err := HTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithHTTPClient(ctx, httpClient, cfg.Variant, cfg.GoogleTasks, logger)
}

// NewWithHTTPClient creates a repository with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, variant task.Variant, lists config.GoogleTasks, logger *log.Logger, opts ...option.ClientOption) (*Repository, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Repository{
		svc:     svc,
		variant: variant,
		titles: map[string]string{
			repository.TasksKey:          lists.TasksList,
			repository.CompletedTasksKey: lists.CompletedList,
		},
		logger:  logger,
		listIDs: make(map[string]string),
	}, nil
}

func (r *Repository) keys() []string {
	if r.variant == task.VariantCompletion {
		return []string{repository.TasksKey, repository.CompletedTasksKey}
	}
	return []string{repository.TasksKey}
}

// Load implements repository.Repository. A missing list is empty.
func (r *Repository) Load(ctx context.Context) (repository.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var snap repository.Snapshot
	for _, key := range r.keys() {
		listID, err := r.findList(ctx, r.titles[key])
		if err != nil {
			return repository.Snapshot{}, err
		}
		if listID == "" {
			continue
		}

		items, err := r.listTasks(ctx, listID)
		if err != nil {
			return repository.Snapshot{}, err
		}
		loaded := r.fromAPI(key, items)
		if key == repository.CompletedTasksKey {
			snap.Completed = loaded
		} else {
			snap.Tasks = loaded
		}
	}
	return snap, nil
}

// Save implements repository.Repository. Each list is cleared and the
// snapshot re-inserted in order.
func (r *Repository) Save(ctx context.Context, snap repository.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// The lists cannot change together. Writing completedTasks first means
	// a failure part-way can duplicate a completed task but never drop it.
	keys := r.keys()
	for i := len(keys) - 1; i >= 0; i-- {
		key := keys[i]
		list := snap.Tasks
		if key == repository.CompletedTasksKey {
			list = snap.Completed
		}
		if err := r.replaceList(ctx, r.titles[key], list); err != nil {
			return err
		}
	}
	return nil
}

// Close implements repository.Repository.
func (r *Repository) Close() error {
	return nil
}

func (r *Repository) fromAPI(key string, items []*tasks.Task) []task.Task {
	out := make([]task.Task, 0, len(items))
	for _, item := range items {
		if task.IsBlank(item.Title) {
			r.logger.Warn("dropping task without text", "list", r.titles[key], "api_id", item.Id)
			continue
		}
		id, status, err := decodeNotes(item.Notes)
		if err != nil {
			r.logger.Warn("ignoring unreadable task notes", "list", r.titles[key], "api_id", item.Id, "err", err)
		}
		if id == "" {
			id = task.NewID()
		}

		t := task.Task{ID: id, Text: item.Title}
		if r.variant == task.VariantStatus {
			t.Status = status
		} else {
			t.Completed = item.Status == apiCompleted
		}
		out = append(out, t)
	}
	return out
}

// findList returns the id of the list titled title, or "" if none exists.
func (r *Repository) findList(ctx context.Context, title string) (string, error) {
	if id, ok := r.listIDs[title]; ok {
		return id, nil
	}

	var found string
	err := r.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if found == "" && strings.EqualFold(strings.TrimSpace(list.Title), title) {
				found = list.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}
	if found != "" {
		r.listIDs[title] = found
	}
	return found, nil
}

func (r *Repository) ensureList(ctx context.Context, title string) (string, error) {
	id, err := r.findList(ctx, title)
	if err != nil || id != "" {
		return id, err
	}

	created, err := r.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	r.logger.Debug("created task list", "title", title, "id", created.Id)
	r.listIDs[title] = created.Id
	return created.Id, nil
}

// listTasks returns every task of a list, completed and hidden ones
// included, in list order.
func (r *Repository) listTasks(ctx context.Context, listID string) ([]*tasks.Task, error) {
	var items []*tasks.Task
	err := r.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			items = append(items, resp.Items...)
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	return items, nil
}

func (r *Repository) replaceList(ctx context.Context, title string, list []task.Task) error {
	listID, err := r.ensureList(ctx, title)
	if err != nil {
		return err
	}

	existing, err := r.listTasks(ctx, listID)
	if err != nil {
		return err
	}
	for _, item := range existing {
		if err := r.svc.Tasks.Delete(listID, item.Id).Context(ctx).Do(); err != nil {
			return wrapError(err)
		}
	}

	var previous string
	for _, t := range list {
		call := r.svc.Tasks.Insert(listID, &tasks.Task{
			Title:  t.Text,
			Notes:  encodeNotes(t, r.variant),
			Status: apiStatus(t, r.variant),
		}).Context(ctx)
		if previous != "" {
			call = call.Previous(previous)
		}
		inserted, err := call.Do()
		if err != nil {
			return wrapError(err)
		}
		previous = inserted.Id
	}

	r.logger.Debug("saved task list", "title", title, "tasks", len(list))
	return nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Check for timeout
	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out: %w", err)
	}

	// Check for auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("token expired or revoked (run: tasklist login): %w", err)
	}

	return err
}
