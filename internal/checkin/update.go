package checkin

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Update advances the session state machine. Every transition is driven by a
// key press or by the result of a store round trip; there are no timers.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case pendingLoadedMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.errText = ""
		m.pending = msg.pending
		m.index = 0
		if len(m.pending) == 0 {
			m.state = StateIdle
			return m, m.loadSummary
		}
		m.state = StateAwaitingResponse
		return m, nil

	case answerRecordedMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.errText = ""
		m.index++
		if m.index >= len(m.pending) {
			return m, m.loadPending
		}
		m.state = StateAwaitingResponse
		return m, nil

	case summaryLoadedMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.errText = ""
		m.streak = msg.streak
		m.today = msg.today
		m.state = StateDayComplete
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case StateAwaitingResponse:
		switch msg.String() {
		case "y", "Y":
			return m, m.recordAnswer(true, "")
		case "n", "N":
			m.excuse.Reset()
			m.excuse.Focus()
			m.state = StateAwaitingExcuse
			return m, textinput.Blink
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "r":
			if m.errText != "" {
				return m, m.loadPending
			}
		}
		return m, nil

	case StateAwaitingExcuse:
		switch msg.Type {
		case tea.KeyEsc:
			m.errText = ""
			m.excuse.Blur()
			m.state = StateAwaitingResponse
			return m, nil
		case tea.KeyEnter:
			excuse := strings.TrimSpace(m.excuse.Value())
			if excuse == "" {
				m.errText = "an excuse note is required for a no"
				return m, nil
			}
			m.errText = ""
			m.excuse.Blur()
			return m, m.recordAnswer(false, excuse)
		}
		var cmd tea.Cmd
		m.excuse, cmd = m.excuse.Update(msg)
		return m, cmd

	case StateDayComplete:
		switch msg.String() {
		case "q", "enter", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	default:
		if msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}
		if msg.String() == "r" && m.errText != "" {
			return m, m.loadPending
		}
		return m, nil
	}
}
