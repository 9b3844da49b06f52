// Package tui renders the live tracking dashboard. It is a pure consumer of
// engine snapshots: every key press calls an engine operation, every tick
// re-reads state, and nothing here owns tracking data.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/timekeepapp/timekeep/internal/engine"
	"github.com/timekeepapp/timekeep/internal/prompt"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputAddProject
	inputNote
)

type model struct {
	engine   *engine.Engine
	requests <-chan prompt.Request

	snap          engine.Snapshot
	now           time.Time
	projectCursor int

	mode  inputMode
	input textinput.Model

	pendingPrompt *prompt.Request

	viewport viewport.Model
	ready    bool
	width    int
	height   int
}

func initialModel(eng *engine.Engine, requests <-chan prompt.Request) model {
	input := textinput.New()
	input.CharLimit = 120

	m := model{
		engine:   eng,
		requests: requests,
		now:      time.Now(),
		input:    input,
	}
	m.refresh()
	return m
}

// refresh pulls a fresh snapshot and keeps the cursor on the selected
// project.
func (m *model) refresh() {
	m.snap = m.engine.Snapshot()
	for i, p := range m.snap.Projects {
		if p.ID == m.snap.SelectedProjectID {
			m.projectCursor = i
			break
		}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tick(), waitForPrompt(m.requests))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-8)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 8
		}
		m.updateViewport()

	case TickMsg:
		m.now = time.Time(msg)
		m.refresh()
		m.updateViewport()
		cmds = append(cmds, tick())

	case PromptMsg:
		req := prompt.Request(msg)
		m.pendingPrompt = &req
		cmds = append(cmds, waitForPrompt(m.requests))

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.projectCursor > 0 {
				m.projectCursor--
				m.selectCursorProject()
				m.updateViewport()
			}

		case "down", "j":
			if m.projectCursor < len(m.snap.Projects)-1 {
				m.projectCursor++
				m.selectCursorProject()
				m.updateViewport()
			}

		case " ", "enter":
			m.engine.PrimaryAction()
			m.refresh()
			m.updateViewport()

		case "a":
			m.mode = inputAddProject
			m.input.Placeholder = "project name"
			m.input.SetValue("")
			m.input.Focus()

		case "n":
			m.mode = inputNote
			m.input.Placeholder = "what are you working on?"
			m.input.SetValue(m.snap.CurrentNote)
			m.input.Focus()

		case "r":
			if m.pendingPrompt != nil {
				m.engine.ResumeFromPrompt(m.pendingPrompt.ProjectID)
				m.pendingPrompt = nil
				m.refresh()
				m.updateViewport()
			}

		case "esc":
			m.pendingPrompt = nil
		}
	}

	if m.ready {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// updateInput handles key presses while the text input is focused.
func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		switch m.mode {
		case inputAddProject:
			m.engine.AddProject(value)
		case inputNote:
			m.engine.SetNote(value)
		}
		m.mode = inputNone
		m.input.Blur()
		m.refresh()
		m.updateViewport()
		return m, nil

	case "esc":
		m.mode = inputNone
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) selectCursorProject() {
	if m.projectCursor >= 0 && m.projectCursor < len(m.snap.Projects) {
		m.engine.SelectProject(m.snap.Projects[m.projectCursor].ID)
		m.refresh()
	}
}

func (m *model) updateViewport() {
	if m.ready {
		m.viewport.SetContent(m.renderProjects())
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(eng *engine.Engine, requests <-chan prompt.Request) error {
	p := tea.NewProgram(
		initialModel(eng, requests),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
