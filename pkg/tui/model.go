package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harrisonrobin/tickbox/pkg/model"
	"github.com/harrisonrobin/tickbox/pkg/store"
)

type mode int

const (
	modeList mode = iota
	modeCreate
	modeEdit
	modeDetail
	modeConfirmDelete
)

const (
	helpList = "a add • e edit • space toggle • d delete • enter details • q quit"
	helpForm = "tab switch field • enter save • esc cancel"
)

type Model struct {
	store   *store.Store
	tasks   []model.Task
	cursor  int
	mode    mode
	title   textinput.Model
	desc    textarea.Model
	focus   int // 0 title, 1 description
	editing string
	status  string
	width   int
}

// New builds the list view over st. st must already be loaded.
func New(st *store.Store) Model {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 256
	ti.Width = 50

	ta := textarea.New()
	ta.Placeholder = "Description"
	ta.ShowLineNumbers = false
	ta.SetWidth(50)
	ta.SetHeight(4)

	m := Model{
		store: st,
		title: ti,
		desc:  ta,
		mode:  modeList,
	}
	m.reload()
	return m
}

func Run(st *store.Store) error {
	_, err := tea.NewProgram(New(st), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeCreate, modeEdit:
			return m.updateForm(msg)
		case modeDetail:
			m.mode = modeList
			return m, nil
		case modeConfirmDelete:
			return m.updateDeleteConfirm(msg.String())
		default:
			return m.updateList(msg.String())
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 10 {
			m.title.Width = msg.Width - 10
			m.desc.SetWidth(msg.Width - 10)
		}
	}
	return m, nil
}

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(m.tasks))
	case "a":
		return m.openForm(modeCreate, model.Task{})
	case "e":
		if task, ok := m.selected(); ok {
			return m.openForm(modeEdit, task)
		}
	case " ":
		if task, ok := m.selected(); ok {
			m.apply(m.store.SetDone(task.ID, !task.IsDone), "")
		}
	case "d":
		if task, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
			m.status = fmt.Sprintf("Delete %q? y/n", task.Title)
		}
	case "enter":
		if _, ok := m.selected(); ok {
			m.mode = modeDetail
		}
	}
	return m, nil
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	m.mode = modeList
	task, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch key {
	case "y", "Y":
		m.apply(m.store.Delete(task.ID), "Deleted task.")
	default:
		m.status = "Delete cancelled."
	}
	return m, nil
}

func (m Model) openForm(md mode, task model.Task) (tea.Model, tea.Cmd) {
	m.mode = md
	m.editing = task.ID
	m.title.SetValue(task.Title)
	m.desc.SetValue(task.Description)
	m.focus = 0
	m.desc.Blur()
	m.status = ""
	return m, m.title.Focus()
}

func (m Model) closeForm() Model {
	m.mode = modeList
	m.editing = ""
	m.title.Blur()
	m.desc.Blur()
	m.title.SetValue("")
	m.desc.SetValue("")
	return m
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closeForm()
		m.status = "Cancelled."
		return m, nil
	case "tab", "shift+tab":
		m.focus = 1 - m.focus
		if m.focus == 0 {
			m.desc.Blur()
			return m, m.title.Focus()
		}
		m.title.Blur()
		return m, m.desc.Focus()
	case "enter":
		return m.submitForm()
	}

	var cmd tea.Cmd
	if m.focus == 0 {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

// submitForm keeps the form open when the store rejects the input so the
// user can correct it.
func (m Model) submitForm() (tea.Model, tea.Cmd) {
	title, desc := m.title.Value(), m.desc.Value()

	var err error
	done := "Task added."
	if m.mode == modeCreate {
		_, err = m.store.Add(title, desc)
	} else {
		err = m.store.Update(m.editing, title, desc)
		done = "Task updated."
	}

	if errors.Is(err, store.ErrValidation) {
		m.status = notice(err)
		return m, nil
	}
	if m.mode == modeCreate && err == nil {
		m.cursor = 0
	}
	m = m.closeForm()
	m.apply(err, done)
	return m, nil
}

// apply reports the outcome of a store call and refreshes the list.
func (m *Model) apply(err error, ok string) {
	if err != nil {
		m.status = notice(err)
	} else {
		m.status = ok
	}
	m.reload()
}

func (m *Model) reload() {
	m.tasks = m.store.Sorted()
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m Model) selected() (model.Task, bool) {
	if len(m.tasks) == 0 {
		return model.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func notice(err error) string {
	switch {
	case errors.Is(err, store.ErrValidation):
		return "Title and description cannot be empty."
	case errors.Is(err, store.ErrNoChange):
		return "No changes made."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
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
