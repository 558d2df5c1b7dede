package googletasks

import (
	"fmt"
	"strings"

	"tasklist/internal/task"
)

// Google Tasks has no custom fields, so the task id and four-state status
// travel in the notes as "key: value" lines.
const (
	notesIDKey     = "tasklist-id"
	notesStatusKey = "tasklist-status"
)

// Google Tasks status values.
const (
	apiNeedsAction = "needsAction"
	apiCompleted   = "completed"
)

func encodeNotes(t task.Task, variant task.Variant) string {
	lines := []string{notesIDKey + ": " + t.ID}
	if variant == task.VariantStatus && t.Status != task.StatusNone {
		lines = append(lines, notesStatusKey+": "+t.Status.String())
	}
	return strings.Join(lines, "\n")
}

// decodeNotes extracts the id and status from notes written by
// encodeNotes. Unknown lines are ignored.
func decodeNotes(notes string) (id string, status task.Status, err error) {
	for _, line := range strings.Split(notes, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case notesIDKey:
			id = value
		case notesStatusKey:
			status, err = task.ParseStatus(value)
			if err != nil {
				return "", task.StatusNone, fmt.Errorf("notes: %w", err)
			}
		}
	}
	return id, status, nil
}

// apiStatus maps a task to the Google Tasks completion status.
func apiStatus(t task.Task, variant task.Variant) string {
	if t.Done(variant) {
		return apiCompleted
	}
	return apiNeedsAction
}
