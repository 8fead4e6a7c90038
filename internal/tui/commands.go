package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/rizq/internal/aggregator"
	"github.com/julianstephens/rizq/internal/models"
)

type loadedMsg struct {
	result    aggregator.Result
	completed map[int]bool
	counters  models.ProfileCounters
	journeys  []models.Journey
	active    []int
	duas      []models.Dua
}

type completedMsg struct {
	event models.CompletionEvent
	err   error
}

// mutatedMsg reports a write that should be followed by a reload.
type mutatedMsg struct {
	status string
	err    error
}

type errMsg struct {
	err error
}

// CelebrationMsg carries a completion event published by the aggregator.
type CelebrationMsg struct {
	Event models.CompletionEvent
}

func (m Model) loadCmd() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx := context.Background()
		msg := loadedMsg{
			result:    deps.Aggregator.LoadTodaysHabits(ctx),
			completed: deps.Aggregator.CompletedSet(ctx),
			counters:  deps.Profile.Counters(ctx),
			active:    deps.Habits.ActiveJourneyIDs(ctx),
		}
		journeys, err := deps.Content.ListJourneys(ctx)
		if err != nil {
			return errMsg{err: fmt.Errorf("failed to list journeys: %w", err)}
		}
		duas, err := deps.Content.ListDuas(ctx)
		if err != nil {
			return errMsg{err: fmt.Errorf("failed to list duas: %w", err)}
		}
		msg.journeys = journeys
		msg.duas = duas
		return msg
	}
}

func (m Model) completeCmd(duaID int) tea.Cmd {
	agg := m.deps.Aggregator
	return func() tea.Msg {
		event, err := agg.Complete(context.Background(), duaID)
		return completedMsg{event: event, err: err}
	}
}

func (m Model) unmarkCmd(duaID int) tea.Cmd {
	store := m.deps.Habits
	return func() tea.Msg {
		err := store.UnmarkCompleted(context.Background(), duaID)
		return mutatedMsg{status: "Completion undone.", err: err}
	}
}

func (m Model) toggleJourneyCmd(journeyID int, active bool) tea.Cmd {
	store := m.deps.Habits
	return func() tea.Msg {
		ctx := context.Background()
		if active {
			return mutatedMsg{status: "Unsubscribed from journey.", err: store.RemoveJourney(ctx, journeyID)}
		}
		return mutatedMsg{status: "Subscribed to journey.", err: store.AddJourney(ctx, journeyID)}
	}
}

func (m Model) addCustomCmd(duaID int, slot models.TimeSlot) tea.Cmd {
	store := m.deps.Habits
	return func() tea.Msg {
		err := store.AddCustomHabit(context.Background(), duaID, slot)
		return mutatedMsg{status: "Custom habit added.", err: err}
	}
}

func (m Model) removeCustomCmd(id string) tea.Cmd {
	store := m.deps.Habits
	return func() tea.Msg {
		err := store.RemoveCustomHabit(context.Background(), id)
		return mutatedMsg{status: "Custom habit removed.", err: err}
	}
}

func (m Model) resetCmd() tea.Cmd {
	ledger := m.deps.Profile
	return func() tea.Msg {
		err := ledger.Reset(context.Background())
		return mutatedMsg{status: "Progress reset.", err: err}
	}
}

func waitForEvent(ch <-chan models.CompletionEvent) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return CelebrationMsg{Event: e}
	}
}
