// Package ui is the interactive full-screen view: the task list as cards
// with inline editing, backed by the same stores as the CLI commands.
package ui

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskcli/internal/api"
	"taskcli/internal/app"
	"taskcli/internal/taskstore"
)

// Field limits enforced before hitting the backend, same as the CLI
// commands.
const (
	maxTitleLen       = 60
	maxDescriptionLen = 150
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeAddDesc
	modeEdit
	modeEditDesc
)

// Model is the bubbletea model. Mutations go straight through the task
// store; nothing is shown as applied until the backend confirmed it.
type Model struct {
	ctx  context.Context
	app  *app.App
	snap taskstore.Snapshot

	cursor     int
	mode       mode
	input      textinput.Model
	status     string
	confirmDel bool

	// pending add/edit state carried between the title and description steps
	pendingTitle string
	editID       string
}

// Run starts the interactive view.
func Run(ctx context.Context, a *app.App) error {
	program := tea.NewProgram(newModel(ctx, a))
	_, err := program.Run()
	return err
}

func newModel(ctx context.Context, a *app.App) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = maxTitleLen
	ti.Width = 40

	m := Model{
		ctx:    ctx,
		app:    a,
		snap:   a.Tasks.Snapshot(),
		input:  ti,
		status: "a: add  e: edit  space: toggle  d: delete  r: reload  q: quit",
	}
	m.cursor = clampCursor(0, len(m.snap.Tasks))
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.mode == modeList {
			return m.updateListMode(msg.String())
		}
		return m.updateInputMode(msg.String(), msg)
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		m.cursor = clampCursor(m.cursor+1, len(m.snap.Tasks))
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(m.snap.Tasks))
	case "a":
		m.mode = modeAdd
		m.input.Placeholder = "Task title"
		m.input.CharLimit = maxTitleLen
		m.input.SetValue("")
		m.input.Focus()
		m.status = "enter: next  esc: cancel"
	case "e":
		if task, ok := m.current(); ok {
			m.mode = modeEdit
			m.editID = task.ID
			m.input.Placeholder = "Task title"
			m.input.CharLimit = maxTitleLen
			m.input.SetValue(task.Title)
			m.input.Focus()
			m.status = "enter: next  esc: cancel"
		}
	case " ":
		if task, ok := m.current(); ok {
			if err := m.app.Tasks.Toggle(m.ctx, task.ID); err != nil {
				m.status = err.Error()
			} else {
				m.status = "toggled"
			}
			m.refresh()
		}
	case "d":
		if _, ok := m.current(); ok {
			m.confirmDel = true
			m.status = "delete this task? (y/n)"
		}
	case "r":
		if err := m.app.Tasks.Load(m.ctx); err != nil {
			m.status = err.Error()
		} else {
			m.status = "reloaded"
		}
		m.refresh()
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y":
		m.confirmDel = false
		if task, ok := m.current(); ok {
			if err := m.app.Tasks.Delete(m.ctx, task.ID); err != nil {
				m.status = err.Error()
			} else {
				m.status = "deleted"
			}
			m.refresh()
		}
	case "n", "esc":
		m.confirmDel = false
		m.status = "cancelled"
	}
	return m, nil
}

func (m Model) updateInputMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		m.mode = modeList
		m.input.Blur()
		m.status = "cancelled"
		return m, nil
	case "enter":
		return m.confirmInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// confirmInput advances the add/edit flow one step: title first, then
// description, then the backend call.
func (m Model) confirmInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	switch m.mode {
	case modeAdd, modeEdit:
		if value == "" {
			m.status = "title cannot be empty"
			return m, nil
		}
		if utf8.RuneCountInString(value) > maxTitleLen {
			m.status = fmt.Sprintf("title too long (max %d characters)", maxTitleLen)
			return m, nil
		}
		m.pendingTitle = value
		if m.mode == modeAdd {
			m.mode = modeAddDesc
		} else {
			m.mode = modeEditDesc
		}
		m.input.Placeholder = "Description (optional)"
		m.input.CharLimit = maxDescriptionLen
		m.input.SetValue(m.currentDescription())
		m.status = "enter: save  esc: cancel"
		return m, nil

	case modeAddDesc:
		var description *string
		if value != "" {
			description = &value
		}
		if _, err := m.app.Tasks.Create(m.ctx, m.pendingTitle, description); err != nil {
			m.status = err.Error()
		} else {
			m.status = "added"
		}

	case modeEditDesc:
		patch := api.TaskPatch{Title: &m.pendingTitle, Description: &value}
		if _, err := m.app.Tasks.Update(m.ctx, m.editID, patch); err != nil {
			m.status = err.Error()
		} else {
			m.status = "saved"
		}
	}

	m.mode = modeList
	m.input.Blur()
	m.refresh()
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	header := "Tasks"
	if st := m.app.Session.State(); st.User != nil {
		header = fmt.Sprintf("Tasks (%s)", st.User.Username)
	}
	b.WriteString(header + "\n\n")

	if m.snap.Loading {
		b.WriteString("  loading...\n")
	} else if len(m.snap.Tasks) == 0 {
		b.WriteString("  no tasks\n")
	}

	for i, task := range m.snap.Tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		marker := "[ ]"
		if task.Completed {
			marker = "[x]"
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, marker, task.Title)
		if task.Description != nil && *task.Description != "" {
			fmt.Fprintf(&b, "      %s\n", *task.Description)
		}
	}

	if m.mode != modeList {
		b.WriteString("\n" + m.input.View() + "\n")
	}

	b.WriteString("\n" + m.status + "\n")
	return b.String()
}

// refresh re-reads the snapshot and keeps the cursor in range.
func (m *Model) refresh() {
	m.snap = m.app.Tasks.Snapshot()
	m.cursor = clampCursor(m.cursor, len(m.snap.Tasks))
}

func (m Model) current() (api.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Tasks) {
		return api.Task{}, false
	}
	return m.snap.Tasks[m.cursor], true
}

func (m Model) currentDescription() string {
	if m.mode == modeAddDesc {
		return ""
	}
	if task, ok := m.app.Tasks.Find(m.editID); ok && task.Description != nil {
		return *task.Description
	}
	return ""
}

func clampCursor(c, n int) int {
	if n == 0 {
		return 0
	}
	if c < 0 {
		return 0
	}
	if c >= n {
		return n - 1
	}
	return c
}
