// Package task defines the task record, its status model and the record codec
// used for persisted snapshots.
package task

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Variant selects the task shape and the list behavior.
type Variant string

const (
	// VariantStatus tasks carry a four-valued status that is cycled in place.
	VariantStatus Variant = "status"

	// VariantCompletion tasks carry a completed flag and move to a second
	// list when completed.
	VariantCompletion Variant = "completion"
)

// DefaultVariant is used when no variant is configured.
const DefaultVariant = VariantStatus

// ParseVariant parses a variant name (case-insensitive, trimmed).
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantStatus, "four-state":
		return VariantStatus, nil
	case VariantCompletion, "two-state":
		return VariantCompletion, nil
	}
	return "", fmt.Errorf("unknown variant: %s", s)
}

// Status is the four-state task status.
type Status int

const (
	StatusNone Status = iota
	StatusNotStarted
	StatusInProgress
	StatusCompleted
)

// statusCycle is the order CycleStatus walks through.
var statusCycle = [...]Status{StatusNone, StatusNotStarted, StatusInProgress, StatusCompleted}

var statusLabels = map[Status]string{
	StatusNone:       "",
	StatusNotStarted: "Not Started",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
}

// Next returns the successor of s in the status cycle, wrapping from
// Completed back to None. Values outside the cycle restart it at None.
func (s Status) Next() Status {
	pos := -1
	for i, c := range statusCycle {
		if c == s {
			pos = i
			break
		}
	}
	return statusCycle[(pos+1)%len(statusCycle)]
}

// String returns the display label; None has an empty label.
func (s Status) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus parses a status label. The empty string is None.
func ParseStatus(label string) (Status, error) {
	for s, l := range statusLabels {
		if strings.EqualFold(l, strings.TrimSpace(label)) {
			return s, nil
		}
	}
	return StatusNone, fmt.Errorf("unknown status: %s", label)
}

// MarshalJSON encodes None as null and every other status as its label.
func (s Status) MarshalJSON() ([]byte, error) {
	if s == StatusNone {
		return []byte("null"), nil
	}
	label, ok := statusLabels[s]
	if !ok {
		return nil, fmt.Errorf("invalid status: %d", int(s))
	}
	return json.Marshal(label)
}

// UnmarshalJSON decodes null or a status label.
func (s *Status) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = StatusNone
		return nil
	}
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("status must be a string or null: %w", err)
	}
	if label == "" {
		return fmt.Errorf("unknown status: %q", label)
	}
	parsed, err := ParseStatus(label)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Task is a single user-entered to-do item.
type Task struct {
	ID        string
	Text      string
	Status    Status // four-state variant
	Completed bool   // two-state variant
}

// New creates a task with a fresh id and the variant's initial status.
func New(text string) Task {
	return Task{
		ID:   NewID(),
		Text: text,
	}
}

// NewID returns a new opaque task id.
func NewID() string {
	return uuid.NewString()
}

// IsBlank reports whether text is empty or whitespace-only.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// ShortID returns the display form of an id: its first 8 characters,
// extended until the prefix holds a non-digit so it never reads as a
// list position.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	n := 8
	for n < len(id) && strings.Trim(id[:n], "0123456789") == "" {
		n++
	}
	return id[:n]
}

// Done reports whether the task counts as finished for its variant.
func (t Task) Done(v Variant) bool {
	if v == VariantCompletion {
		return t.Completed
	}
	return t.Status == StatusCompleted
}

// StatusLabel returns the label shown for the task under the variant.
func (t Task) StatusLabel(v Variant) string {
	if v == VariantCompletion {
		if t.Completed {
			return StatusCompleted.String()
		}
		return ""
	}
	return t.Status.String()
}
