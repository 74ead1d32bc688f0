package chat

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/model/chat"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/service/advisor"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/service/conversation"
	"github.com/Yuvaramesh/sales-agent-frontend/pkg/httputil"
)

// Handler serves the widget protocol: one chat exchange per request plus an
// explicit end-session call.
type Handler struct {
	conv *conversation.Service
	adv  advisor.Advisor
}

// New creates the chat handler.
func New(conv *conversation.Service, adv advisor.Advisor) *Handler {
	return &Handler{conv: conv, adv: adv}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/end-session", h.handleEndSession)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.UserEmail == "" || payload.Message == "" {
		httputil.RespondError(w, http.StatusBadRequest, "user_email and message are required")
		return
	}

	sessionID := ""
	if payload.SessionID != nil {
		sessionID = *payload.SessionID
	}
	sess := h.conv.GetOrCreate(payload.UserEmail, sessionID)

	// Serialize the whole exchange: concurrent requests with the same
	// session_id would otherwise interleave advisor rules and history writes.
	sess.Lock()
	defer sess.Unlock()

	reply, err := h.adv.Respond(r.Context(), sess, payload.Message)
	if err != nil {
		log.Error().Err(err).Str("component", "chat").Str("session_id", sess.ID).Msg("advisor failed")
		httputil.RespondError(w, http.StatusInternalServerError, "failed to generate a response")
		return
	}

	if err := h.conv.Append(sess.ID, payload.Message, reply.Text, reply.Agent); err != nil {
		log.Error().Err(err).Str("component", "chat").Str("session_id", sess.ID).Msg("failed to record exchange")
	}

	// Auto-end once the question limit is reached.
	if count := h.conv.ExchangeCount(sess.ID); count >= h.conv.QuestionLimit() {
		summary, err := h.conv.EndAndSave(r.Context(), sess.ID)
		if err != nil {
			log.Error().Err(err).Str("component", "chat").Str("session_id", sess.ID).Msg("auto end failed")
		}
		httputil.RespondJSON(w, http.StatusOK, chat.ChatResponse{
			Response:     reply.Text,
			SessionID:    sess.ID,
			SessionEnded: true,
			Summary:      summary,
			Message:      fmt.Sprintf("Conversation ended after %d questions", h.conv.QuestionLimit()),
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chat.ChatResponse{
		Response:  reply.Text,
		SessionID: sess.ID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleEndSession(w http.ResponseWriter, r *http.Request) {
	var payload chat.EndSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := ""
	if payload.SessionID != nil {
		sessionID = *payload.SessionID
	}
	if sessionID == "" {
		httputil.RespondJSON(w, http.StatusOK, chat.EndSessionResponse{Message: "No active session"})
		return
	}

	// An unknown session is not an error for the widget: it already reset
	// on its side, or the server restarted. Answer as a no-op.
	sess, ok := h.conv.Get(sessionID)
	if !ok {
		httputil.RespondJSON(w, http.StatusOK, chat.EndSessionResponse{Message: "No active session"})
		return
	}

	sess.Lock()
	defer sess.Unlock()

	summary, err := h.conv.EndAndSave(r.Context(), sessionID)
	if err != nil {
		httputil.RespondJSON(w, http.StatusOK, chat.EndSessionResponse{Message: "No active session"})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chat.EndSessionResponse{
		Status:    "ended",
		SessionID: sessionID,
		UserEmail: payload.UserEmail,
		Summary:   summary,
	})
}

// HandleHealth answers liveness probes.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "sales-agent",
	})
}
