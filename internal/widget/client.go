package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/model/chat"
)

// Client implements Backend over HTTP. The underlying http.Client carries no
// timeout: the widget never abandons an in-flight call, it only disables
// input until the call settles.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient builds a client for the server at baseURL.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}

// SendMessage posts one chat turn. A token is sent as-is; an empty token is
// serialized as an explicit null, matching the first-call behavior of the
// browser widget.
func (c *Client) SendMessage(ctx context.Context, email, message, token string) (chat.ChatResponse, error) {
	resp, err := c.postJSON(ctx, "/api/chat", chat.ChatRequest{
		UserEmail: email,
		Message:   message,
		SessionID: nullable(token),
	})
	if err != nil {
		return chat.ChatResponse{}, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return chat.ChatResponse{}, fmt.Errorf("chat request: unexpected status %d", resp.StatusCode)
	}

	var out chat.ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return chat.ChatResponse{}, fmt.Errorf("decode chat response: %w", err)
	}
	return out, nil
}

// EndSession posts the end-session call. Only transport failures are
// reported; the status is logged but any HTTP response counts as done,
// since the server tears the session down on its side regardless.
func (c *Client) EndSession(ctx context.Context, email, token string) error {
	resp, err := c.postJSON(ctx, "/api/end-session", chat.EndSessionRequest{
		UserEmail: email,
		SessionID: nullable(token),
	})
	if err != nil {
		return fmt.Errorf("end-session request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("component", "widget").Msg("end-session returned non-success status")
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
