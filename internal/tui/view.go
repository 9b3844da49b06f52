package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/timekeepapp/timekeep/internal/report"
)

// runningFrames animate the indicator next to a live timer.
var runningFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("63"))

	runningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("130")).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func (m model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	var s strings.Builder
	s.WriteString(m.renderHeader() + "\n")
	s.WriteString(m.renderStatus() + "\n")

	if m.pendingPrompt != nil {
		banner := fmt.Sprintf("Resume %s? r: resume • esc: dismiss", m.pendingPrompt.DisplayName)
		s.WriteString(bannerStyle.Render(banner) + "\n")
	} else {
		s.WriteString("\n")
	}

	if m.mode != inputNone {
		s.WriteString(m.input.View() + "\n")
	} else {
		s.WriteString("\n")
	}

	s.WriteString(m.viewport.View() + "\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m model) renderHeader() string {
	return headerStyle.Render("timekeep")
}

// renderStatus shows the live timer line and today's total for the selected
// project.
func (m model) renderStatus() string {
	var s strings.Builder

	if m.snap.RunningEntry != nil {
		frame := runningFrames[m.now.Second()%len(runningFrames)]
		elapsed := report.RunningSeconds(m.snap.Entries, m.now)
		note := m.snap.RunningEntry.Note
		if note == "" {
			note = report.NoTaskPlaceholder
		}
		line := fmt.Sprintf("%s %s  %s · %s",
			frame,
			formatClock(elapsed),
			m.engine.ProjectName(m.snap.RunningEntry.ProjectID),
			note)
		s.WriteString(runningStyle.Render(line))
	} else {
		s.WriteString(idleStyle.Render("⏸ not tracking"))
	}

	if m.snap.SelectedProjectID != "" {
		today := report.TotalSecondsToday(m.snap.Entries, m.snap.SelectedProjectID, m.now)
		s.WriteString(idleStyle.Render(fmt.Sprintf("   today: %s", formatClock(today))))
	}

	return s.String()
}

func (m model) renderProjects() string {
	if len(m.snap.Projects) == 0 {
		return idleStyle.Render("No projects yet. Press a to add one.")
	}

	var s strings.Builder
	for i, project := range m.snap.Projects {
		cursor := "  "
		if i == m.projectCursor {
			cursor = "> "
		}

		style := lipgloss.NewStyle()
		if i == m.projectCursor {
			style = selectedStyle
		}

		today := report.TotalSecondsToday(m.snap.Entries, project.ID, m.now)
		line := fmt.Sprintf("%s%s  %s today", cursor, project.Name, formatClock(today))
		s.WriteString(style.Render(line) + "\n")
	}
	return s.String()
}

func (m model) renderFooter() string {
	info := "space: start/stop • n: note • a: add project • ↑/↓: select • q: quit"
	return footerStyle.Render(info)
}

// formatClock renders seconds as h:mm:ss.
func formatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}
