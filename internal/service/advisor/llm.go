package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/Yuvaramesh/sales-agent-frontend/internal/config"
)

const systemPrompt = `You are a friendly car sales assistant for an online dealership.
You help buyers pick a vehicle from the dealership inventory, answer questions
about cars, financing and delivery, and guide them towards placing an order.
Inventory searches, car selection and order placement are handled for you by
the dealership systems; when the user asks to see cars, tell them to describe
the make, body style or budget they have in mind. Keep answers short and
concrete. Never invent inventory, prices or order numbers.`

// LLM generates replies through an Ark chat model behind an eino chain.
type LLM struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewLLM compiles the prompt + model chain from the Ark configuration.
func NewLLM(ctx context.Context, cfg config.AIConfig) (*LLM, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &LLM{chain: runnable}, nil
}

// Generate implements Generator.
func (l *LLM) Generate(ctx context.Context, req GenRequest) (string, error) {
	var b strings.Builder
	if req.Context != "" {
		b.WriteString("Previous:\n")
		b.WriteString(req.Context)
		b.WriteString("\n")
	}
	if req.StateContext != "" {
		b.WriteString(req.StateContext)
		b.WriteString("\n")
	}
	b.WriteString("User: ")
	b.WriteString(req.Query)

	response, err := l.chain.Invoke(ctx, map[string]any{
		"system": systemPrompt,
		"query":  b.String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}

	log.Debug().Str("component", "advisor").Int("length", len(response.Content)).Msg("generated llm reply")
	return strings.TrimSpace(response.Content), nil
}

// Summarize implements conversation.Summarizer on the same chain.
func (l *LLM) Summarize(ctx context.Context, prompt string) (string, error) {
	response, err := l.chain.Invoke(ctx, map[string]any{
		"system": "You summarize car dealership conversations accurately and concisely.",
		"query":  prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run summary chain: %w", err)
	}
	return strings.TrimSpace(response.Content), nil
}
