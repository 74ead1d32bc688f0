// Package tui is the terminal rendition of the chat widget: an entry
// screen that collects the user's email, then a conversation screen with
// a scrolling transcript, a typing indicator, and an end-session flow.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/widget"
)

type uiState int

const (
	stateEntry uiState = iota
	stateChat
	stateConfirmEnd
	stateEnding
)

// Messages for tea updates.
type (
	turnSettledMsg widget.TurnResult
	endSettledMsg  struct{ err error }
)

// Model drives the widget UI. All session and transcript state lives in
// the controller; the model only holds presentation state.
type Model struct {
	controller *widget.Controller
	logger     zerolog.Logger

	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer

	state  uiState
	width  int
	height int
	ready  bool

	alert  string // blocking alert, dismissed with any key
	notice string // server notice, e.g. the auto-end message
}

// New builds the initial model in the entry state.
func New(controller *widget.Controller, logger zerolog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "you@example.com"
	ti.CharLimit = 256
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		controller: controller,
		logger:     logger,
		textinput:  ti,
		spinner:    sp,
		state:      stateEntry,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// A blocking alert eats the next keypress, whatever it is.
		if m.alert != "" {
			m.alert = ""
			return m, nil
		}

		switch m.state {
		case stateEntry:
			return m.updateEntry(msg)
		case stateConfirmEnd:
			return m.updateConfirmEnd(msg)
		case stateEnding:
			// Input stays locked until the end call settles.
			if msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEsc, tea.KeyCtrlD:
			if !m.controller.Busy() {
				m.state = stateConfirmEnd
			}
			return m, nil

		case tea.KeyEnter:
			return m.handleSubmit()
		}

		if !m.controller.Busy() {
			m.textinput, tiCmd = m.textinput.Update(msg)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case spinner.TickMsg:
		if m.controller.Busy() || m.state == stateEnding {
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}

	case turnSettledMsg:
		if msg.SessionEnded {
			m.notice = msg.Notice
			if m.notice == "" {
				m.notice = "The conversation has ended."
			}
		}
		m.refreshTranscript()

	case endSettledMsg:
		if msg.err != nil {
			// State is untouched; tell the user and return to the chat.
			m.alert = "Could not reach the server to end the session. Your conversation is still here."
			m.state = stateChat
			return m, nil
		}
		m.state = stateEntry
		m.notice = ""
		m.textinput.Reset()
		m.textinput.Placeholder = "you@example.com"
		m.viewport.SetContent("")
		return m, nil
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

func (m Model) updateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyEnter:
		if err := m.controller.StartSession(m.textinput.Value()); err != nil {
			m.alert = "Please enter a valid email address."
			return m, nil
		}
		m.state = stateChat
		m.textinput.Reset()
		m.textinput.Placeholder = "Type a message... (Enter to send, Esc to end session)"
		m.refreshTranscript()
		return m, nil
	}

	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmEnd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.state = stateEnding
		return m, tea.Batch(m.spinner.Tick, m.endSession())
	case "n", "esc", "ctrl+c":
		m.state = stateChat
		return m, nil
	}
	return m, nil
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	_, pending, err := m.controller.BeginTurn(m.textinput.Value())
	if err != nil {
		switch {
		case errors.Is(err, widget.ErrEmptyMessage), errors.Is(err, widget.ErrBusy):
			return m, nil
		default:
			m.logger.Error().Err(err).Msg("begin turn")
			return m, nil
		}
	}

	m.textinput.Reset()
	m.refreshTranscript()

	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		return turnSettledMsg(m.controller.FinishTurn(context.Background(), pending))
	})
}

func (m Model) endSession() tea.Cmd {
	return func() tea.Msg {
		return endSettledMsg{err: m.controller.EndSession(context.Background())}
	}
}

func (m *Model) layout() {
	headerHeight := 2
	inputHeight := 3
	footerHeight := 2

	if !m.ready {
		m.viewport = viewport.New(m.width-2, m.height-headerHeight-inputHeight-footerHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width - 2
		m.viewport.Height = m.height - headerHeight - inputHeight - footerHeight
	}
	m.textinput.Width = m.width - 6

	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(m.width-8),
	)
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// Run starts the widget UI and blocks until it exits.
func Run(controller *widget.Controller, logger zerolog.Logger) error {
	p := tea.NewProgram(New(controller, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
