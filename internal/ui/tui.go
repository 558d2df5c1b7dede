// Package ui provides the interactive terminal view of the task list.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"tasklist/internal/output"
	"tasklist/internal/repository"
	"tasklist/internal/store"
	"tasklist/internal/task"
)

// ErrNotTerminal is returned by Run when input or output is not a terminal.
var ErrNotTerminal = errors.New("tui requires a terminal")

type mode int

const (
	modeList mode = iota
	modeAdd
)

// changedMsg reports that the store was mutated. It carries no data: the
// model re-reads the store, so a late or reordered message can never
// replace the view with an older list.
type changedMsg struct{}

// Model is the bubbletea model of the task list view.
type Model struct {
	ctx       context.Context
	store     *store.Store
	tasks     []task.Task
	completed []task.Task
	cursor    int
	mode      mode
	input     textinput.Model
	status    string
	failed    bool
}

// NewModel creates a model showing st.
func NewModel(ctx context.Context, st *store.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "Add a new task"
	ti.CharLimit = 256
	ti.Width = 40

	snap := st.Snapshot()
	return Model{
		ctx:       ctx,
		store:     st,
		tasks:     snap.Tasks,
		completed: snap.Completed,
		input:     ti,
		status:    "Press 'a' to add a task.",
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f any) bool {
	file, ok := f.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Run starts the interactive view on in and out and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, st *store.Store, in io.Reader, out io.Writer) error {
	if !IsTerminal(in) || !IsTerminal(out) {
		return ErrNotTerminal
	}

	program := tea.NewProgram(NewModel(ctx, st),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)

	// Mutations happen inside Update, so the message is sent from a new
	// goroutine to avoid blocking the event loop on itself.
	unsubscribe := st.Subscribe(func(repository.Snapshot) {
		go program.Send(changedMsg{})
	})
	defer unsubscribe()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.reload()
		return m, nil
	case tea.KeyMsg:
		if m.mode == modeAdd {
			return m.updateAddMode(msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
	}
	return m, nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.setStatus("Cancelled", false)
		return m, nil
	case "enter":
		added, ok, err := m.store.Add(m.ctx, m.input.Value())
		if err != nil {
			m.setStatus(fmt.Sprintf("save failed: %v", err), true)
			return m, nil
		}
		if !ok {
			// Blank input: keep editing.
			return m, nil
		}
		m.reload()
		m.cursor = clampCursor(len(m.tasks)-1, len(m.tasks))
		m.input.SetValue("")
		m.setStatus(fmt.Sprintf("Added %q", added.Text), false)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(m.tasks))
	case "a", "i":
		m.mode = modeAdd
		m.setStatus("Type a task and press Enter (esc to finish)", false)
		cmd := m.input.Focus()
		return m, cmd
	case "d", "delete":
		if len(m.tasks) == 0 {
			return m, nil
		}
		removed, err := m.store.Delete(m.ctx, m.cursor)
		if err != nil {
			m.setStatus(fmt.Sprintf("delete failed: %v", err), true)
			return m, nil
		}
		m.reload()
		m.setStatus(fmt.Sprintf("Deleted %q", removed.Text), false)
	case "c", "x":
		if len(m.tasks) == 0 || m.store.Variant() != task.VariantCompletion {
			return m, nil
		}
		done, err := m.store.Complete(m.ctx, m.cursor)
		if err != nil {
			m.setStatus(fmt.Sprintf("complete failed: %v", err), true)
			return m, nil
		}
		m.reload()
		m.setStatus(fmt.Sprintf("Completed %q", done.Text), false)
	case "s", " ":
		if len(m.tasks) == 0 || m.store.Variant() != task.VariantStatus {
			return m, nil
		}
		cycled, err := m.store.CycleStatus(m.ctx, m.cursor)
		if err != nil {
			m.setStatus(fmt.Sprintf("status change failed: %v", err), true)
			return m, nil
		}
		m.reload()
		m.setStatus(fmt.Sprintf("%q is now %s", cycled.Text, output.StatusText(cycled.Status)), false)
	}
	return m, nil
}

func (m *Model) reload() {
	snap := m.store.Snapshot()
	m.tasks = snap.Tasks
	m.completed = snap.Completed
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m *Model) setStatus(status string, failed bool) {
	m.status = status
	m.failed = failed
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Task List"))
	b.WriteString("\n\n")

	if len(m.tasks) == 0 {
		b.WriteString(mutedStyle.Render("No tasks yet. Press 'a' to add one."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderTasks())
	}

	if m.store.Variant() == task.VariantCompletion {
		b.WriteString("\n")
		b.WriteString(m.renderCompleted())
	}

	b.WriteString("\n---\n")
	if m.mode == modeAdd {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	if m.failed {
		b.WriteString(errorStyle.Render(m.status))
	} else {
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.help()))

	return b.String()
}

func (m Model) renderTasks() string {
	var b strings.Builder
	for i, t := range m.tasks {
		cursor := " "
		if m.cursor == i && m.mode == modeList {
			cursor = cursorStyle.Render(">")
		}

		line := fmt.Sprintf("%s %d. %s", cursor, i+1, t.Text)
		if label := renderStatus(t.Status); label != "" && m.store.Variant() == task.VariantStatus {
			line += "  " + label
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderCompleted() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(output.CompletedTitle))
	b.WriteString("\n")
	if len(m.completed) == 0 {
		b.WriteString(mutedStyle.Render(output.NoCompleted))
		b.WriteString("\n")
		return b.String()
	}

	width := len("Task")
	for _, t := range m.completed {
		width = max(width, len(t.Text))
	}
	fmt.Fprintf(&b, "%-*s  %s\n", width, "Task", "Status")
	for _, t := range m.completed {
		fmt.Fprintf(&b, "%-*s  %s\n", width, t.Text, renderStatus(task.StatusCompleted))
	}
	return b.String()
}

func (m Model) help() string {
	if m.mode == modeAdd {
		return "enter add • esc done • ctrl+c quit"
	}
	action := "s/space cycle status"
	if m.store.Variant() == task.VariantCompletion {
		action = "c complete"
	}
	return fmt.Sprintf("↑/↓ move • a add • %s • d delete • q quit", action)
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
