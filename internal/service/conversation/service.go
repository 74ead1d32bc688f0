package conversation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/catalog"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// History budget. Roughly 4 characters per token.
const (
	maxPromptTokens  = 3000
	recentTurnsKeep  = 8
	summarizeEvery   = 12
	summaryMaxTokens = 800
)

// Session holds the mutable state of one conversation. The service mutex
// only guards the session map; session contents are protected by the
// session's own lock, which the HTTP layer holds for the whole exchange.
// The widget serializes its own sends, but nothing stops two requests from
// arriving with the same session_id.
type Session struct {
	mu sync.Mutex

	ID             string
	UserEmail      string
	StartedAt      time.Time
	Exchanges      []chat.Exchange
	Stage          string
	Collected      map[string]string
	LastResults    []catalog.Car
	Selected       *catalog.Car
	OrderID        string
	MemorySummary  string
	Awaiting       string
	ProfileSummary string
	ProfileLoaded  bool

	lastSummaryIndex int
	totalExchanges   int
}

// Lock serializes request handling for this session. Hold it across the
// advisor call and the history writes of one exchange; service methods do
// not take it themselves.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session for the next request.
func (s *Session) Unlock() { s.mu.Unlock() }

// Ordered reports whether an order was already placed in this session.
func (s *Session) Ordered() bool {
	return s.OrderID != ""
}

// Summarizer condenses conversation text, typically via the advisor's model.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SummarySaver persists end-of-session summaries.
type SummarySaver interface {
	SaveSummary(ctx context.Context, sum catalog.Summary) error
}

// Service manages in-memory conversation state and its persistence on end.
type Service struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	saver      SummarySaver
	summarizer Summarizer
	limit      int
}

// NewService builds the conversation manager. saver and summarizer may be nil.
func NewService(saver SummarySaver, summarizer Summarizer, questionLimit int) *Service {
	if questionLimit < 1 {
		questionLimit = 1
	}
	return &Service{
		sessions:   make(map[string]*Session),
		saver:      saver,
		summarizer: summarizer,
		limit:      questionLimit,
	}
}

// QuestionLimit returns the exchange count after which a session auto-ends.
func (s *Service) QuestionLimit() int {
	return s.limit
}

// GetOrCreate returns the session for sessionID, creating one when the ID is
// empty or unknown. A caller-provided ID is honored so clients that kept a
// token across a server restart keep working.
func (s *Service) GetOrCreate(userEmail, sessionID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID != "" {
		if sess, ok := s.sessions[sessionID]; ok {
			if sess.UserEmail == "" {
				sess.UserEmail = userEmail
			}
			return sess
		}
	} else {
		sessionID = uuid.NewString()
	}

	sess := &Session{
		ID:        sessionID,
		UserEmail: userEmail,
		StartedAt: time.Now().UTC(),
		Stage:     "init",
		Collected: make(map[string]string),
	}
	s.sessions[sessionID] = sess
	log.Info().Str("component", "conversation").Str("session_id", sessionID).Str("user", userEmail).Msg("session created")
	return sess
}

// Get looks up an existing session.
func (s *Service) Get(sessionID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	return sess, ok
}

// Append records one user/assistant exchange.
func (s *Service) Append(sessionID, userMessage, botResponse, agent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	sess.Exchanges = append(sess.Exchanges, chat.Exchange{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		UserMessage: sanitizeText(userMessage, 4000),
		BotResponse: sanitizeText(botResponse, 4000),
		Agent:       agent,
		CreatedAt:   time.Now().UTC(),
	})
	sess.totalExchanges++
	return nil
}

// ExchangeCount returns the number of exchanges recorded over the session's
// lifetime. Compression rewrites the Exchanges slice, so the count is kept
// separately and never goes down.
func (s *Service) ExchangeCount(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess.totalExchanges
	}
	return 0
}

// ContextForLLM builds the prompt context: the running memory summary plus
// the most recent exchanges, trimmed to the token budget. Older history is
// compressed into the summary once enough exchanges pile up.
func (s *Service) ContextForLLM(ctx context.Context, sessionID string) string {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return ""
	}

	s.compressHistoryIfNeeded(ctx, sess)

	var lines []string
	tokensUsed := 0

	if sess.MemorySummary != "" {
		summary := "Memory Summary:\n" + sess.MemorySummary + "\n"
		lines = append(lines, summary)
		tokensUsed += estimateTokens(summary)
	}

	recent := sess.Exchanges
	if len(recent) > recentTurnsKeep {
		recent = recent[len(recent)-recentTurnsKeep:]
	}
	for _, m := range recent {
		if m.UserMessage != "" {
			line := "User: " + m.UserMessage + "\n"
			t := estimateTokens(line)
			if tokensUsed+t > maxPromptTokens {
				break
			}
			lines = append(lines, line)
			tokensUsed += t
		}
		if m.BotResponse != "" {
			line := fmt.Sprintf("Assistant (%s): %s\n", m.Agent, m.BotResponse)
			t := estimateTokens(line)
			if tokensUsed+t > maxPromptTokens {
				break
			}
			lines = append(lines, line)
			tokensUsed += t
		}
	}

	return strings.Join(lines, "\n")
}

func (s *Service) compressHistoryIfNeeded(ctx context.Context, sess *Session) {
	if len(sess.Exchanges) <= recentTurnsKeep+2 {
		return
	}
	if len(sess.Exchanges)-sess.lastSummaryIndex < summarizeEvery {
		return
	}

	older := sess.Exchanges[:len(sess.Exchanges)-recentTurnsKeep]
	if len(older) == 0 {
		return
	}

	var olderText []string
	for _, m := range older {
		if m.UserMessage != "" {
			olderText = append(olderText, "User: "+sanitizeText(m.UserMessage, 2000))
		}
		if m.BotResponse != "" {
			olderText = append(olderText, "Assistant: "+sanitizeText(m.BotResponse, 2000))
		}
	}
	toSummarize := strings.Join(olderText, "\n")

	var summary string
	if estimateTokens(toSummarize) < summaryMaxTokens/2 {
		summary = toSummarize
	} else {
		summary = s.summarize(ctx,
			"Summarize the following conversation history into concise bullet points. "+
				"Keep facts, decisions, selected vehicle details, outstanding questions and next steps. "+
				"Limit to ~200-400 words.\n\nHistory:\n"+toSummarize+"\n\nSummary:")
		if summary == "" {
			summary = "(summary generation failed)"
		}
	}

	if sess.MemorySummary != "" {
		sess.MemorySummary = sess.MemorySummary + "\n---\n" + summary
	} else {
		sess.MemorySummary = summary
	}

	recent := sess.Exchanges[len(sess.Exchanges)-recentTurnsKeep:]
	placeholder := chat.Exchange{
		ID:          uuid.NewString(),
		SessionID:   sess.ID,
		UserMessage: "[older history summarized]",
		BotResponse: sess.MemorySummary,
		Agent:       "system_summary",
		CreatedAt:   time.Now().UTC(),
	}
	sess.Exchanges = append([]chat.Exchange{placeholder}, recent...)
	sess.lastSummaryIndex = len(sess.Exchanges)
}

func (s *Service) summarize(ctx context.Context, prompt string) string {
	if s.summarizer == nil {
		return ""
	}
	out, err := s.summarizer.Summarize(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Str("component", "conversation").Msg("summary generation failed")
		return ""
	}
	return out
}

// GenerateSummary produces an end-of-session summary, degrading to a crude
// first-lines digest when no summarizer is configured or it fails.
func (s *Service) GenerateSummary(ctx context.Context, sessionID string) string {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok || len(sess.Exchanges) == 0 {
		return "No messages to summarize."
	}

	var convo []string
	for _, m := range sess.Exchanges {
		convo = append(convo, "User: "+m.UserMessage)
		convo = append(convo, "Assistant: "+m.BotResponse)
	}

	summary := s.summarize(ctx,
		"Summarize the following conversation concisely. Include main topics, "+
			"the selected vehicle (if chosen), and next steps.\n\n"+
			"Conversation:\n"+strings.Join(convo, "\n")+"\n\nSummary:")
	if summary == "" {
		var heads []string
		for i, m := range sess.Exchanges {
			if i >= 3 {
				break
			}
			head := m.UserMessage
			if len(head) > 80 {
				head = head[:80]
			}
			heads = append(heads, head)
		}
		summary = "Summary (fallback): " + strings.Join(heads, " | ")
	}

	return sanitizeText(summary, 1000)
}

// EndAndSave summarizes the session, persists the summary, and marks the
// session finished. The in-memory state stays around for audit until restart.
func (s *Service) EndAndSave(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return "", ErrSessionNotFound
	}

	summary := s.GenerateSummary(ctx, sessionID)

	if s.saver != nil {
		err := s.saver.SaveSummary(ctx, catalog.Summary{
			SessionID:    sessionID,
			UserEmail:    sess.UserEmail,
			Text:         summary,
			MessageCount: sess.totalExchanges,
			StartedAt:    sess.StartedAt,
			EndedAt:      time.Now().UTC(),
		})
		if err != nil {
			log.Error().Err(err).Str("component", "conversation").Str("session_id", sessionID).Msg("failed to persist summary")
		}
	}

	s.mu.Lock()
	sess.Stage = "finished"
	s.mu.Unlock()

	log.Info().Str("component", "conversation").Str("session_id", sessionID).
		Int("exchanges", len(sess.Exchanges)).Msg("session ended")
	return summary, nil
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func sanitizeText(s string, maxLen int) string {
	s = strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}
