package chat

// Wire types for the widget protocol. SessionID is a pointer so the very
// first call serializes an explicit null, which is what the browser widget
// always sent.

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	UserEmail string  `json:"user_email"`
	Message   string  `json:"message"`
	SessionID *string `json:"session_id"`
}

// ChatResponse is the body answered by POST /api/chat.
type ChatResponse struct {
	Response     string `json:"response"`
	SessionID    string `json:"session_id"`
	SessionEnded bool   `json:"session_ended"`
	Summary      string `json:"conversation_summary,omitempty"`
	Message      string `json:"message,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
}

// EndSessionRequest is the body of POST /api/end-session.
type EndSessionRequest struct {
	UserEmail string  `json:"user_email"`
	SessionID *string `json:"session_id"`
}

// EndSessionResponse is the body answered by POST /api/end-session.
type EndSessionResponse struct {
	Status    string `json:"status,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	Summary   string `json:"conversation_summary,omitempty"`
	Message   string `json:"message,omitempty"`
}
