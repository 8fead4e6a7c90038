package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/rizq/internal/models"
	"github.com/julianstephens/rizq/internal/tui/components/journeys"
	"github.com/julianstephens/rizq/internal/tui/components/today"
)

// chromeHeight is the space taken by tabs, stat lines, banners and help.
const chromeHeight = 9

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		h, v := docStyle.GetFrameSize()
		m.todayModel.SetSize(size.Width-h, size.Height-v-chromeHeight)
		m.journeysModel.SetSize(size.Width-h, size.Height-v-chromeHeight)
		m.help.Width = size.Width
	}

	if m.state == StateAddCustom {
		return m.updateAddCustom(msg)
	}

	switch msg := msg.(type) {
	case loadedMsg:
		m.loaded = true
		m.habits = msg.result.Habits
		m.fallback = msg.result.Fallback
		m.skipped = msg.result.Skipped
		m.completed = msg.completed
		m.counters = msg.counters
		m.duas = msg.duas
		m.todayModel.SetHabits(m.habits, m.completed)
		m.journeysModel.SetJourneys(msg.journeys, msg.active)
		return m, nil

	case completedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.lastErr = nil
		// Events only carry completions that paid XP
		if m.deps.Events == nil || msg.event.AlreadyRewarded {
			m.celebration = celebrate(msg.event)
		}
		return m, m.loadCmd()

	case CelebrationMsg:
		m.celebration = celebrate(msg.Event)
		return m, waitForEvent(m.deps.Events)

	case mutatedMsg:
		if msg.err != nil {
			m.lastErr = msg.err
			return m, nil
		}
		m.lastErr = nil
		m.status = msg.status
		return m, m.loadCmd()

	case errMsg:
		m.lastErr = msg.err
		return m, nil

	case today.CompleteMsg:
		m.status = ""
		return m, m.completeCmd(msg.DuaID)

	case today.UnmarkMsg:
		m.celebration = ""
		return m, m.unmarkCmd(msg.DuaID)

	case today.RemoveCustomMsg:
		return m, m.removeCustomCmd(msg.CustomID)

	case today.AddCustomMsg:
		if len(m.duas) == 0 {
			m.lastErr = fmt.Errorf("no duas available to add")
			return m, nil
		}
		m.customForm = &CustomFormModel{DuaID: m.duas[0].ID, Slot: string(models.TimeSlotAnytime)}
		m.form = newCustomForm(m.customForm, m.duas)
		m.previousState = m.state
		m.state = StateAddCustom
		return m, m.form.Init()

	case journeys.ToggleMsg:
		return m, m.toggleJourneyCmd(msg.JourneyID, msg.Active)

	case tea.KeyMsg:
		if m.state == StateConfirmReset {
			switch {
			case key.Matches(msg, m.keys.Confirm):
				m.state = m.previousState
				m.celebration = ""
				return m, m.resetCmd()
			case key.Matches(msg, m.keys.Cancel):
				m.state = m.previousState
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			m.celebration = ""
			return m, m.loadCmd()
		case key.Matches(msg, m.keys.Reset):
			m.previousState = m.state
			m.state = StateConfirmReset
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.todayModel, cmd = m.todayModel.Update(msg)
	case StateJourneys:
		m.journeysModel, cmd = m.journeysModel.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) updateAddCustom(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.state = m.previousState
		slot, err := models.ParseTimeSlot(m.customForm.Slot)
		if err != nil {
			m.lastErr = err
			return m, nil
		}
		cmds = append(cmds, m.addCustomCmd(m.customForm.DuaID, slot))
	case huh.StateAborted:
		m.state = m.previousState
	}
	return m, tea.Batch(cmds...)
}

func newCustomForm(f *CustomFormModel, duas []models.Dua) *huh.Form {
	duaOptions := make([]huh.Option[int], len(duas))
	for i, d := range duas {
		duaOptions[i] = huh.NewOption(fmt.Sprintf("%s (+%d XP)", d.Title, d.XPValue), d.ID)
	}
	slotOptions := make([]huh.Option[string], len(models.TimeSlots))
	for i, s := range models.TimeSlots {
		slotOptions[i] = huh.NewOption(s.Label(), string(s))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Dua").
				Options(duaOptions...).
				Value(&f.DuaID),
			huh.NewSelect[string]().
				Title("Time of day").
				Options(slotOptions...).
				Value(&f.Slot),
		),
	).WithTheme(huh.ThemeDracula())
}

// celebrate renders a completion event as a one-line banner.
func celebrate(e models.CompletionEvent) string {
	name := e.Title
	if name == "" {
		name = "dua"
	}
	if e.AlreadyCompleted {
		return name + " is already completed today."
	}
	if e.AlreadyRewarded {
		return "✓ " + name + " (XP already earned today)"
	}
	parts := []string{fmt.Sprintf("✓ %s +%d XP", name, e.XPEarned)}
	if e.LeveledUp {
		parts = append(parts, fmt.Sprintf("🎉 Level %d!", e.Counters.Level))
	}
	if e.StreakExtended {
		parts = append(parts, fmt.Sprintf("🔥 %d day streak", e.Counters.StreakCount))
	}
	return strings.Join(parts, "  ")
}
