package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/rizq/internal/aggregator"
	"github.com/julianstephens/rizq/internal/progress"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = docStyle.Render(m.todayModel.View())
	case StateJourneys:
		content = docStyle.Render(m.journeysModel.View())
	case StateAddCustom:
		content = docStyle.Render(m.form.View())
	case StateConfirmReset:
		content = m.viewConfirmReset()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewStats(),
		m.viewBanner(),
		content,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	tabTitles := []string{"Today", "Journeys"}
	for i, title := range tabTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStats() string {
	if !m.loaded {
		return headerStyle.Render(mutedStyle.Render("Loading..."))
	}

	current, needed := progress.XPProgressInLevel(m.counters.TotalXP, m.counters.Level)
	level := fmt.Sprintf("Level %-3d %s %d/%d XP  🔥 %d",
		m.counters.Level, m.levelBar.ViewAs(progress.LevelFraction(m.counters.TotalXP)),
		current, needed, m.counters.StreakCount)

	day := aggregator.ComputeProgress(m.habits, m.completed)
	daily := fmt.Sprintf("Today     %s %d/%d  %d/%d XP",
		m.dayBar.ViewAs(day.Percentage), day.Completed, day.Total, day.EarnedXP, day.TotalXP)

	return headerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, level, daily))
}

func (m Model) viewBanner() string {
	var lines []string
	if m.fallback {
		lines = append(lines, warningStyle.Render("⚠ Showing sample habits, your list could not be loaded in time."))
	} else if m.skipped > 0 {
		lines = append(lines, warningStyle.Render(fmt.Sprintf("⚠ %d item(s) could not be loaded.", m.skipped)))
	}
	if m.lastErr != nil {
		lines = append(lines, dangerStyle.Render("Error: "+m.lastErr.Error()))
	}
	if m.celebration != "" {
		lines = append(lines, celebrationStyle.Render(m.celebration))
	} else if m.status != "" {
		lines = append(lines, mutedStyle.Render(m.status))
	}
	if len(lines) == 0 {
		return ""
	}
	return headerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) viewConfirmReset() string {
	return lipgloss.Place(m.width, max(m.height-chromeHeight, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Reset XP, level and streak?"),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
