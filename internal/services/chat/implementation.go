package chat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/calebmah/streamchat/internal/config"
	openaisvc "github.com/calebmah/streamchat/internal/infrastructure/openai"
	"github.com/calebmah/streamchat/internal/services/chat/models"
	"github.com/calebmah/streamchat/internal/services/pricing"
	"github.com/calebmah/streamchat/internal/stream"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// Implementation streams completions through the OpenAI provider.
// Stateless between invocations; each submission is independent.
type Implementation struct {
	provider *openaisvc.Service
}

func NewService(provider *openaisvc.Service) *Implementation {
	return &Implementation{provider: provider}
}

// ResolveModel picks the effective model for a submission
func (s *Implementation) ResolveModel(requested string) string {
	if requested != "" {
		return requested
	}
	if configured := config.GetOpenAIModel(); configured != "" {
		return configured
	}
	return config.FallbackModel
}

// StreamCompletion issues two upstream calls: a streaming completion
// whose deltas are forwarded token-eagerly, then a non-streaming
// completion against the identical conversation to obtain authoritative
// usage counts. The provider does not report usage mid-stream, and the
// second call is deliberately kept off the first-token critical path.
func (s *Implementation) StreamCompletion(ctx context.Context, req models.CompletionRequest, emit EmitFunc) error {
	if s == nil || s.provider == nil {
		return ErrUpstreamUnavailable
	}

	client := s.provider.GetClient()
	model := s.ResolveModel(req.Model)

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	log.Debug().
		Str("model", model).
		Int("message_count", len(messages)).
		Msg("Opening upstream completion stream")

	upstream, err := client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to open completion stream: %w", err)
	}
	defer upstream.Close()

	for {
		resp, err := upstream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to receive completion chunk: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		token := resp.Choices[0].Delta.Content
		if token == "" {
			// Empty fragments are suppressed, never forwarded.
			continue
		}
		if err := emit(stream.Token(token)); err != nil {
			return fmt.Errorf("failed to emit token: %w", err)
		}
	}

	usage, err := s.fetchUsage(ctx, client, model, messages)
	if err != nil {
		// Tokens already delivered stand; the stream is closed without
		// a usage report so the client treats usage as unknown.
		return fmt.Errorf("failed to fetch usage: %w", err)
	}

	if err := emit(stream.UsageReport(usage)); err != nil {
		return fmt.Errorf("failed to emit usage report: %w", err)
	}
	if err := emit(stream.End()); err != nil {
		return fmt.Errorf("failed to emit end of stream: %w", err)
	}
	return nil
}

// fetchUsage re-issues the identical conversation without streaming to
// obtain the provider's token counts, then prices them.
func (s *Implementation) fetchUsage(ctx context.Context, client *openai.Client, model string, messages []openai.ChatCompletionMessage) (stream.Usage, error) {
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return stream.Usage{}, err
	}

	promptTokens := resp.Usage.PromptTokens
	completionTokens := resp.Usage.CompletionTokens
	totalTokens := resp.Usage.TotalTokens
	if totalTokens == 0 {
		totalTokens = promptTokens + completionTokens
	}

	return stream.Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      totalTokens,
		Cost:             pricing.Cost(model, promptTokens, completionTokens),
	}, nil
}
