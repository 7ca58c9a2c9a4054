package checkin

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/discilogo/discilogo/internal/habits"
)

// SessionState enumerates the check-in flow states. Exactly one habit is on
// screen at a time; the flow only ever moves forward through today's pending
// queue and ends on the day-complete summary.
type SessionState int

const (
	// StateIdle is the initial state while the pending queue loads.
	StateIdle SessionState = iota
	// StateAwaitingResponse shows the current habit's question and waits
	// for a yes/no answer.
	StateAwaitingResponse
	// StateAwaitingExcuse collects the mandatory excuse after a no.
	StateAwaitingExcuse
	// StateDayComplete shows the streak and today's recap once nothing is
	// pending.
	StateDayComplete
)

type pendingLoadedMsg struct {
	pending []habits.Habit
	err     error
}

type answerRecordedMsg struct {
	err error
}

type summaryLoadedMsg struct {
	streak int
	today  []habits.LogEntry
	err    error
}

// Model drives the daily check-in session against the habit store.
type Model struct {
	store    *habits.Service
	state    SessionState
	pending  []habits.Habit
	index    int
	excuse   textinput.Model
	streak   int
	today    []habits.LogEntry
	errText  string
	quitting bool
	width    int
}

// NewModel constructs the check-in session over the given habit store.
func NewModel(store *habits.Service) Model {
	input := textinput.New()
	input.Placeholder = "What got in the way?"
	input.CharLimit = 280

	return Model{
		store:  store,
		state:  StateIdle,
		excuse: input,
	}
}

// Init starts loading today's pending queue.
func (m Model) Init() tea.Cmd {
	return m.loadPending
}

// State exposes the current flow state.
func (m Model) State() SessionState {
	return m.state
}

// CurrentHabit returns the habit awaiting an answer, if any.
func (m Model) CurrentHabit() (habits.Habit, bool) {
	if m.index < 0 || m.index >= len(m.pending) {
		return habits.Habit{}, false
	}
	return m.pending[m.index], true
}

func (m Model) loadPending() tea.Msg {
	pending, err := m.store.PendingHabitsToday(context.Background())
	return pendingLoadedMsg{pending: pending, err: err}
}

func (m Model) recordAnswer(status bool, excuse string) tea.Cmd {
	habit, ok := m.CurrentHabit()
	if !ok {
		return m.loadPending
	}
	return func() tea.Msg {
		_, err := m.store.LogHabit(context.Background(), habit.ID, habit.QuestionText, status, excuse)
		return answerRecordedMsg{err: err}
	}
}

func (m Model) loadSummary() tea.Msg {
	streak, err := m.store.Streak(context.Background())
	if err != nil {
		return summaryLoadedMsg{err: err}
	}
	today, err := m.store.TodayLogs(context.Background())
	return summaryLoadedMsg{streak: streak, today: today, err: err}
}
