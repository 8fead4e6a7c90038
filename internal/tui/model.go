package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/rizq/internal/aggregator"
	"github.com/julianstephens/rizq/internal/content"
	"github.com/julianstephens/rizq/internal/habits"
	"github.com/julianstephens/rizq/internal/models"
	"github.com/julianstephens/rizq/internal/profile"
	"github.com/julianstephens/rizq/internal/tui/components/journeys"
	"github.com/julianstephens/rizq/internal/tui/components/today"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateJourneys
	StateAddCustom
	StateConfirmReset
)

// tabCount is the number of states reachable with tab.
const tabCount = 2

type CustomFormModel struct {
	DuaID int
	Slot  string
}

// Deps are the services the model drives. Events is optional; when set, the
// model shows celebrations delivered on it instead of the ones returned by
// its own completion commands.
type Deps struct {
	Aggregator *aggregator.Aggregator
	Habits     *habits.Store
	Profile    *profile.Ledger
	Content    content.Provider
	Events     <-chan models.CompletionEvent
}

type Model struct {
	deps          Deps
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	todayModel    today.Model
	journeysModel journeys.Model
	levelBar      progress.Model
	dayBar        progress.Model
	form          *huh.Form
	customForm    *CustomFormModel

	habits    []models.Habit
	completed map[int]bool
	counters  models.ProfileCounters
	duas      []models.Dua
	fallback  bool
	skipped   int
	loaded    bool

	celebration string
	status      string
	lastErr     error
	quitting    bool
	width       int
	height      int
}

func NewModel(deps Deps) Model {
	return Model{
		deps:          deps,
		state:         StateToday,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		todayModel:    today.New(0, 0),
		journeysModel: journeys.New(0, 0),
		levelBar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		dayBar:        progress.New(progress.WithSolidFill("42"), progress.WithWidth(30)),
		completed:     map[int]bool{},
		counters:      models.ProfileCounters{Level: 1},
	}
}

// Notify returns a completion handler that forwards events to ch without
// blocking. Events are dropped when ch is full.
func Notify(ch chan<- models.CompletionEvent) func(models.CompletionEvent) {
	return func(e models.CompletionEvent) {
		select {
		case ch <- e:
		default:
		}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadCmd()}
	if m.deps.Events != nil {
		cmds = append(cmds, waitForEvent(m.deps.Events))
	}
	return tea.Batch(cmds...)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		tk := today.DefaultKeyMap()
		keys = append(keys, tk.Complete, tk.Unmark, tk.Add)
	case StateJourneys:
		keys = append(keys, journeys.DefaultKeyMap().Toggle)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh, m.keys.Reset}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		tk := today.DefaultKeyMap()
		actions = []key.Binding{tk.Complete, tk.Unmark, tk.Add, tk.Remove}
	case StateJourneys:
		actions = []key.Binding{journeys.DefaultKeyMap().Toggle}
	}
	return [][]key.Binding{global, actions}
}

func (m Model) State() SessionState {
	return m.state
}
