// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"tasklist/internal/task"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// CompletedTitle heads the completed tasks table.
	CompletedTitle = "Tasks Completed"

	// NoCompleted is printed when the completed table is empty.
	NoCompleted = "No completed tasks yet."

	// NoTasks is printed when there are no open tasks.
	NoTasks = "no tasks found"
)

// FormatTask formats an open task line.
// Format: "{N:>4}  {TEXT}" followed by "  [{STATUS}]" when the task has a
// status label.
func FormatTask(w io.Writer, num int, t task.Task, v task.Variant) {
	fmt.Fprintf(w, "%4d  %s%s\n", num, normalizeTitle(t.Text), statusSuffix(t, v))
}

// FormatTaskWithID formats an open task line with its short id.
// Format: "{N:>4}  {ID}  {TEXT}" followed by the status suffix.
func FormatTaskWithID(w io.Writer, num int, t task.Task, v task.Variant) {
	fmt.Fprintf(w, "%4d  %s  %s%s\n", num, task.ShortID(t.ID), normalizeTitle(t.Text), statusSuffix(t, v))
}

// FormatListHeader formats a list section header.
func FormatListHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, normalizeListTitle(title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatCompleted formats the completed tasks table of the completion
// variant.
func FormatCompleted(w io.Writer, completed []task.Task) {
	FormatListHeader(w, CompletedTitle)
	if len(completed) == 0 {
		fmt.Fprintln(w, NoCompleted)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Task\tStatus")
	for _, t := range completed {
		fmt.Fprintf(tw, "%s\t%s\n", normalizeTitle(t.Text), t.StatusLabel(task.VariantCompletion))
	}
	tw.Flush()
}

// StatusText returns the status label, or "none" for the empty status.
func StatusText(s task.Status) string {
	if s == task.StatusNone {
		return "none"
	}
	return s.String()
}

func statusSuffix(t task.Task, v task.Variant) string {
	if v != task.VariantStatus || t.Status == task.StatusNone {
		return ""
	}
	return "  [" + t.Status.String() + "]"
}

// normalizeTitle normalizes a task text for display.
// - Empty or whitespace-only texts become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListTitle normalizes a section title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
