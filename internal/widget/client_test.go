package widget

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestSendMessageFirstCallSerializesNullToken(t *testing.T) {
	var body map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("unmarshal request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"session_id": "s1", "response": "Hello!"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	reply, err := client.SendMessage(context.Background(), "a@b.com", "Hi", "")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	if string(body["user_email"]) != `"a@b.com"` {
		t.Fatalf("user_email = %s", body["user_email"])
	}
	if string(body["message"]) != `"Hi"` {
		t.Fatalf("message = %s", body["message"])
	}
	if string(body["session_id"]) != "null" {
		t.Fatalf("session_id = %s, want explicit null", body["session_id"])
	}
	if reply.SessionID != "s1" || reply.Response != "Hello!" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestSendMessageCarriesToken(t *testing.T) {
	var body map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"session_id": "s1", "response": "again"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	if _, err := client.SendMessage(context.Background(), "a@b.com", "Hi again", "s1"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if string(body["session_id"]) != `"s1"` {
		t.Fatalf("session_id = %s, want \"s1\"", body["session_id"])
	}
}

func TestSendMessageNonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	if _, err := client.SendMessage(context.Background(), "a@b.com", "Hi", ""); err == nil {
		t.Fatal("expected an error on 500")
	}
}

func TestSendMessageTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := NewClient(srv.URL, zerolog.Nop())
	if _, err := client.SendMessage(context.Background(), "a@b.com", "Hi", ""); err == nil {
		t.Fatal("expected a transport error")
	}
}

func TestEndSessionSwallowsNonSuccessStatus(t *testing.T) {
	var path string
	var body map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		http.Error(w, "session store unavailable", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	if err := client.EndSession(context.Background(), "a@b.com", "s1"); err != nil {
		t.Fatalf("EndSession must treat any HTTP response as done, got %v", err)
	}
	if path != "/api/end-session" {
		t.Fatalf("path = %q", path)
	}
	if string(body["session_id"]) != `"s1"` {
		t.Fatalf("session_id = %s", body["session_id"])
	}
}

func TestEndSessionTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, zerolog.Nop())
	if err := client.EndSession(context.Background(), "a@b.com", "s1"); err == nil {
		t.Fatal("expected a transport error")
	}
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/", zerolog.Nop())
	if _, err := client.SendMessage(context.Background(), "a@b.com", "Hi", ""); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if path != "/api/chat" {
		t.Fatalf("path = %q, want /api/chat", path)
	}
}
