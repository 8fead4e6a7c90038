package journeys

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/rizq/internal/models"
)

// ToggleMsg asks to subscribe (Active false) or unsubscribe (Active true).
type ToggleMsg struct {
	JourneyID int
	Active    bool
}

type Item struct {
	Journey models.Journey
	Active  bool
}

func (i Item) Title() string {
	mark := "  "
	if i.Active {
		mark = "✓ "
	}
	return fmt.Sprintf("%s%s %s", mark, i.Journey.Emoji, i.Journey.Name)
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%d min · %d XP/day", i.Journey.EstimatedMinutes, i.Journey.DailyXP)
	if i.Journey.IsPremium {
		desc += " · premium"
	}
	if i.Journey.Description != "" {
		desc += " · " + i.Journey.Description
	}
	return desc
}

func (i Item) FilterValue() string { return i.Journey.Name }

type KeyMap struct {
	Toggle key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "subscribe/unsubscribe"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Journeys"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func (m *Model) SetJourneys(all []models.Journey, active []int) {
	set := make(map[int]bool, len(active))
	for _, id := range active {
		set[id] = true
	}
	items := make([]list.Item, len(all))
	for i, j := range all {
		items[i] = Item{Journey: j, Active: set[j.ID]}
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx < len(items) {
		m.list.Select(idx)
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(msg, m.keys.Toggle) {
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleMsg{JourneyID: i.Journey.ID, Active: i.Active} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No journeys available."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
