package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/catalog"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/model/chat"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/service/advisor"
	"github.com/Yuvaramesh/sales-agent-frontend/internal/service/conversation"
)

func setupRouter(t *testing.T, questionLimit int) (*chi.Mux, *conversation.Service) {
	t.Helper()
	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("catalog.Open err: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	conv := conversation.NewService(store, nil, questionLimit)
	adv := advisor.New(store, conv, nil)
	handler := New(conv, adv)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	r.Get("/health", handler.HandleHealth)
	return r, conv
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatCreatesSession(t *testing.T) {
	r, _ := setupRouter(t, 6)

	resp := postJSON(t, r, "/chat", chat.ChatRequest{UserEmail: "a@b.com", Message: "hello"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var out chat.ChatResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if out.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if out.Response == "" {
		t.Fatal("expected a response")
	}
	if out.SessionEnded {
		t.Fatal("first exchange must not end the session")
	}
}

func TestChatReusesProvidedSession(t *testing.T) {
	r, _ := setupRouter(t, 6)

	resp := postJSON(t, r, "/chat", chat.ChatRequest{UserEmail: "a@b.com", Message: "hello"})
	var first chat.ChatResponse
	json.Unmarshal(resp.Body.Bytes(), &first)

	resp = postJSON(t, r, "/chat", chat.ChatRequest{UserEmail: "a@b.com", Message: "hi again", SessionID: &first.SessionID})
	var second chat.ChatResponse
	json.Unmarshal(resp.Body.Bytes(), &second)

	if second.SessionID != first.SessionID {
		t.Fatalf("session id changed: %s -> %s", first.SessionID, second.SessionID)
	}
}

func TestChatNullSessionID(t *testing.T) {
	r, _ := setupRouter(t, 6)

	// The widget's first call carries an explicit null.
	req := httptest.NewRequest(http.MethodPost, "/chat",
		bytes.NewReader([]byte(`{"user_email":"a@b.com","message":"hi","session_id":null}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestChatMissingFields(t *testing.T) {
	r, _ := setupRouter(t, 6)

	if resp := postJSON(t, r, "/chat", chat.ChatRequest{Message: "hi"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("missing email: expected 400, got %d", resp.Code)
	}
	if resp := postJSON(t, r, "/chat", chat.ChatRequest{UserEmail: "a@b.com"}); resp.Code != http.StatusBadRequest {
		t.Fatalf("missing message: expected 400, got %d", resp.Code)
	}
}

func TestChatAutoEndsAtQuestionLimit(t *testing.T) {
	r, _ := setupRouter(t, 2)

	resp := postJSON(t, r, "/chat", chat.ChatRequest{UserEmail: "a@b.com", Message: "hello"})
	var first chat.ChatResponse
	json.Unmarshal(resp.Body.Bytes(), &first)
	if first.SessionEnded {
		t.Fatal("ended too early")
	}

	resp = postJSON(t, r, "/chat", chat.ChatRequest{UserEmail: "a@b.com", Message: "hello again", SessionID: &first.SessionID})
	var second chat.ChatResponse
	json.Unmarshal(resp.Body.Bytes(), &second)
	if !second.SessionEnded {
		t.Fatal("expected auto end at the question limit")
	}
	if second.Message == "" || second.Summary == "" {
		t.Fatalf("expected limit message and summary, got %+v", second)
	}
}

func TestChatConcurrentRequestsSameSession(t *testing.T) {
	r, conv := setupRouter(t, 100)

	resp := postJSON(t, r, "/chat", chat.ChatRequest{UserEmail: "a@b.com", Message: "hello"})
	var first chat.ChatResponse
	json.Unmarshal(resp.Body.Bytes(), &first)

	// The widget serializes its own sends, but the HTTP surface cannot stop
	// two clients from reusing one session_id. Exchanges must be recorded
	// one at a time, not interleaved.
	payload, err := json.Marshal(chat.ChatRequest{
		UserEmail: "a@b.com",
		Message:   "tell me about financing, name: Bob",
		SessionID: &first.SessionID,
	})
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)
			if resp.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.Code)
			}
		}()
	}
	wg.Wait()

	if got := conv.ExchangeCount(first.SessionID); got != workers+1 {
		t.Fatalf("expected %d exchanges, got %d", workers+1, got)
	}
}

func TestEndSessionFlow(t *testing.T) {
	r, _ := setupRouter(t, 6)

	resp := postJSON(t, r, "/chat", chat.ChatRequest{UserEmail: "a@b.com", Message: "show me sedans"})
	var first chat.ChatResponse
	json.Unmarshal(resp.Body.Bytes(), &first)

	resp = postJSON(t, r, "/end-session", chat.EndSessionRequest{UserEmail: "a@b.com", SessionID: &first.SessionID})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var out chat.EndSessionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if out.Status != "ended" || out.SessionID != first.SessionID {
		t.Fatalf("unexpected end response: %+v", out)
	}
	if out.Summary == "" {
		t.Fatal("expected a conversation summary")
	}
}

func TestEndSessionWithoutSession(t *testing.T) {
	r, _ := setupRouter(t, 6)

	resp := postJSON(t, r, "/end-session", chat.EndSessionRequest{UserEmail: "a@b.com"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var out chat.EndSessionResponse
	json.Unmarshal(resp.Body.Bytes(), &out)
	if out.Message != "No active session" {
		t.Fatalf("unexpected message: %q", out.Message)
	}
}

func TestHealth(t *testing.T) {
	r, _ := setupRouter(t, 6)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
