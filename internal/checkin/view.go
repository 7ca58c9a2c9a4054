package checkin

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the current session state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateIdle:
		content = hintStyle.Render("Loading today's habits...")
	case StateAwaitingResponse:
		content = m.viewQuestion()
	case StateAwaitingExcuse:
		content = m.viewExcuse()
	case StateDayComplete:
		content = m.viewDayComplete()
	}

	if m.errText != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, errorStyle.Render(m.errText))
	}
	return content + "\n"
}

func (m Model) viewQuestion() string {
	habit, ok := m.CurrentHabit()
	if !ok {
		return hintStyle.Render("Nothing pending.")
	}

	progress := hintStyle.Render(fmt.Sprintf("habit %d of %d", m.index+1, len(m.pending)))
	question := questionStyle.Render(habit.QuestionText)
	hints := hintStyle.Render(yesStyle.Render("y") + " yes  " + noStyle.Render("n") + " no  q quit")
	return lipgloss.JoinVertical(lipgloss.Left, progress, question, hints)
}

func (m Model) viewExcuse() string {
	habit, _ := m.CurrentHabit()
	question := questionStyle.Render(habit.QuestionText)
	prompt := hintStyle.Render("No it is. What got in the way?")
	hints := hintStyle.Render("enter save  esc back")
	return lipgloss.JoinVertical(lipgloss.Left, question, prompt, recapStyle.Render(m.excuse.View()), hints)
}

func (m Model) viewDayComplete() string {
	header := questionStyle.Render("All habits answered for today.")
	streak := streakStyle.Render(fmt.Sprintf("current streak: %d day(s)", m.streak))

	var recap strings.Builder
	for _, entry := range m.today {
		if entry.Status {
			recap.WriteString(yesStyle.Render("yes") + "  " + entry.HabitQuestionSnapshot + "\n")
			continue
		}
		recap.WriteString(noStyle.Render("no ") + "  " + entry.HabitQuestionSnapshot)
		if entry.ExcuseNote != "" {
			recap.WriteString(" (" + entry.ExcuseNote + ")")
		}
		recap.WriteString("\n")
	}

	hints := hintStyle.Render("q quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, streak, recapStyle.Render(recap.String()), hints)
}
