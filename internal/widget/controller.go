package widget

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/model/chat"
)

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrEmptyMessage = errors.New("message is empty")
	ErrBusy         = errors.New("an exchange is already in flight")
	ErrNoSession    = errors.New("no active session")
)

// FallbackText is the fixed assistant turn shown when a send fails. The
// underlying error goes to the log, never to the transcript.
const FallbackText = "Sorry, an error occurred. Please try again."

// Backend is the remote chat service as seen by the widget. SendMessage
// returns an error on transport failure or a non-2xx status; EndSession
// returns an error on transport failure only.
type Backend interface {
	SendMessage(ctx context.Context, email, message, token string) (chat.ChatResponse, error)
	EndSession(ctx context.Context, email, token string) error
}

// PendingTurn snapshots one outbound exchange between BeginTurn and
// FinishTurn, so the request carries the state as of the moment the user
// turn was appended.
type PendingTurn struct {
	email string
	token string
	text  string
}

// TurnResult reports how an exchange settled.
type TurnResult struct {
	Assistant    Turn   // the appended assistant turn, when Appended
	Appended     bool   // whether an assistant turn was appended
	Failed       bool   // true when the fallback turn was used
	SessionEnded bool   // server reported the conversation auto-ended
	Notice       string // server message accompanying an auto-end
}

// Controller owns the widget state: session, transcript, and the
// one-exchange-in-flight guard. All methods are safe for use from the UI
// loop and the command goroutines it spawns.
type Controller struct {
	mu         sync.Mutex
	backend    Backend
	logger     zerolog.Logger
	session    Session
	transcript Transcript
	busy       bool
}

// NewController builds a controller talking to backend.
func NewController(backend Backend, logger zerolog.Logger) *Controller {
	return &Controller{backend: backend, logger: logger}
}

// StartSession validates and stores the user identifier. No network call.
func (c *Controller) StartSession(email string) error {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}

	c.mu.Lock()
	c.session.Email = email
	c.mu.Unlock()

	c.logger.Info().Str("component", "widget").Str("email", email).Msg("session started")
	return nil
}

// Email returns the stored identifier, empty in the entry state.
func (c *Controller) Email() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Email
}

// Token returns the current session token, empty until the server sets one.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Token
}

// Busy reports whether an exchange is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Turns returns a copy of the transcript.
func (c *Controller) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Turns()
}

// TranscriptLen returns the number of turns in the transcript.
func (c *Controller) TranscriptLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Len()
}

// BeginTurn validates text, appends the user turn, and arms the busy guard.
// The returned PendingTurn must be handed to FinishTurn exactly once.
func (c *Controller) BeginTurn(text string) (Turn, *PendingTurn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, nil, ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Email == "" {
		return Turn{}, nil, ErrNoSession
	}
	if c.busy {
		return Turn{}, nil, ErrBusy
	}

	userTurn := Turn{Text: text, Author: AuthorUser, At: time.Now()}
	c.transcript.Append(userTurn)
	c.busy = true

	return userTurn, &PendingTurn{
		email: c.session.Email,
		token: c.session.Token,
		text:  text,
	}, nil
}

// FinishTurn performs the exchange armed by BeginTurn: one request, no
// retries. Success adopts the reply's token and appends the assistant turn;
// any failure appends the fixed fallback turn. The busy guard is always
// released.
func (c *Controller) FinishTurn(ctx context.Context, pending *PendingTurn) TurnResult {
	reply, err := c.backend.SendMessage(ctx, pending.email, pending.text, pending.token)

	c.mu.Lock()
	defer func() {
		c.busy = false
		c.mu.Unlock()
	}()

	if err != nil {
		c.logger.Error().Err(err).Str("component", "widget").Msg("send failed")
		turn := Turn{Text: FallbackText, Author: AuthorAssistant, At: time.Now()}
		c.transcript.Append(turn)
		return TurnResult{Assistant: turn, Appended: true, Failed: true}
	}

	if reply.SessionID != "" {
		c.session.Token = reply.SessionID
	}

	result := TurnResult{SessionEnded: reply.SessionEnded, Notice: reply.Message}
	if reply.Response != "" {
		turn := Turn{Text: reply.Response, Author: AuthorAssistant, At: time.Now()}
		c.transcript.Append(turn)
		result.Assistant = turn
		result.Appended = true
	}
	return result
}

// SendTurn runs BeginTurn and FinishTurn back to back. The terminal UI uses
// the two halves separately so the user turn renders before the call settles.
func (c *Controller) SendTurn(ctx context.Context, text string) (Turn, TurnResult, error) {
	userTurn, pending, err := c.BeginTurn(text)
	if err != nil {
		return Turn{}, TurnResult{}, err
	}
	return userTurn, c.FinishTurn(ctx, pending), nil
}

// EndSession issues the end-session call and, unless the call itself fails
// in transit, clears the transcript and resets the session. Confirmation is
// the caller's responsibility.
func (c *Controller) EndSession(ctx context.Context) error {
	c.mu.Lock()
	email, token := c.session.Email, c.session.Token
	c.mu.Unlock()

	if email == "" {
		return ErrNoSession
	}

	if err := c.backend.EndSession(ctx, email, token); err != nil {
		c.logger.Error().Err(err).Str("component", "widget").Msg("end session failed")
		return err
	}

	c.mu.Lock()
	c.transcript.Clear()
	c.session.Reset()
	c.mu.Unlock()

	c.logger.Info().Str("component", "widget").Msg("session ended")
	return nil
}
