package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/widget"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	timeStyle      = lipgloss.NewStyle().Faint(true)
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("214"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	overlayStyle   = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(1, 3)
)

func (m Model) View() string {
	if !m.ready && m.state != stateEntry {
		return "loading..."
	}

	if m.alert != "" {
		return m.centered(overlayStyle.Render(errStyle.Render(m.alert) + "\n\n" + helpStyle.Render("press any key to continue")))
	}

	switch m.state {
	case stateEntry:
		return m.viewEntry()
	case stateConfirmEnd:
		return m.centered(overlayStyle.Render("End this session?\n\n" + helpStyle.Render("y: end session    n: keep chatting")))
	case stateEnding:
		return m.centered(overlayStyle.Render(m.spinner.View() + " Ending session..."))
	}

	return m.viewChat()
}

func (m Model) viewEntry() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sales Assistant"))
	b.WriteString("\n\n")
	b.WriteString("Enter your email to start chatting:\n\n")
	b.WriteString(inputBoxStyle.Render(m.textinput.View()))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("Enter to continue, Esc to quit"))
	return b.String()
}

func (m Model) viewChat() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Sales Assistant"))
	b.WriteString(timeStyle.Render("  " + m.controller.Email()))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	if m.controller.Busy() {
		b.WriteString(inputBoxStyle.Render(m.spinner.View() + " assistant is typing..."))
	} else {
		b.WriteString(inputBoxStyle.Render(m.textinput.View()))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter to send · Esc to end session · Ctrl+C to quit"))
	return b.String()
}

func (m Model) renderTranscript() string {
	turns := m.controller.Turns()
	if len(turns) == 0 {
		return helpStyle.Render("Say hello to get started.")
	}

	var b strings.Builder
	for _, turn := range turns {
		stamp := timeStyle.Render(turn.At.Local().Format("15:04"))
		switch turn.Author {
		case widget.AuthorUser:
			b.WriteString(fmt.Sprintf("%s %s\n%s\n\n", userStyle.Render("👤 You"), stamp, turn.Text))
		default:
			b.WriteString(fmt.Sprintf("%s %s\n%s\n", assistantStyle.Render("🤖 Assistant"), stamp, m.renderMarkdown(turn.Text)))
		}
	}
	return b.String()
}

// Assistant turns may carry markdown (lists of cars, bold prices); fall
// back to plain text when the renderer is unavailable.
func (m Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text + "\n"
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}

func (m Model) centered(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
