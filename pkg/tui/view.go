package tui

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/tickbox/pkg/model"
)

func (m Model) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tasks (%d)\n\n", m.store.Len())

	switch m.mode {
	case modeCreate, modeEdit:
		b.WriteString(m.renderForm())
	case modeDetail:
		task, _ := m.selected()
		b.WriteString(renderDetail(task))
	default:
		b.WriteString(m.renderTaskList())
	}

	b.WriteString("\n---\n")
	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n")
	}
	if m.mode == modeCreate || m.mode == modeEdit {
		b.WriteString(helpForm)
	} else {
		b.WriteString(helpList)
	}
	return b.String()
}

func (m Model) renderTaskList() string {
	if len(m.tasks) == 0 {
		return "No tasks yet. Press 'a' to add one.\n"
	}

	var b strings.Builder
	for i, t := range m.tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(cursor)
		b.WriteString(renderRow(t))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(t model.Task) string {
	box := "[ ]"
	suffix := ""
	if t.IsDone {
		box = "[x]"
		suffix = " (completed)"
	}
	return fmt.Sprintf("%s %s%s", box, t.Title, suffix)
}

func renderDetail(t model.Task) string {
	status := "Pending"
	if t.IsDone {
		status = "Completed"
	}
	return fmt.Sprintf("%s\n\n%s\n\nStatus: %s\nCreated: %s\n",
		t.Title, t.Description, status, t.DateAdded.Format("2006-01-02 at 15:04:05"))
}

func (m Model) renderForm() string {
	heading := "New task"
	if m.mode == modeEdit {
		heading = "Edit task"
	}
	return heading + "\n\n" + m.title.View() + "\n\n" + m.desc.View() + "\n"
}
