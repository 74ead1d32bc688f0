package chat

import "time"

// Exchange persists one user/assistant turn pair for audit and summaries.
type Exchange struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	UserMessage string    `json:"userMessage"`
	BotResponse string    `json:"botResponse"`
	Agent       string    `json:"agent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
