package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/timekeepapp/timekeep/internal/prompt"
)

// Message types driving the dashboard.
type (
	// TickMsg advances the live timer once a second.
	TickMsg time.Time

	// PromptMsg surfaces a resume prompt from the engine.
	PromptMsg prompt.Request
)

// tick schedules the next timer advance.
func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForPrompt listens for the next resume prompt.
func waitForPrompt(requests <-chan prompt.Request) tea.Cmd {
	return func() tea.Msg {
		req, ok := <-requests
		if !ok {
			return nil
		}
		return PromptMsg(req)
	}
}
