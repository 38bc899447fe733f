package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/bargainmart/backend/internal/config"
	"github.com/bargainmart/backend/internal/model/chat"
)

// Completer is the completion surface consumed by the negotiation and
// assistant services; tests substitute a fake.
type Completer interface {
	Generate(ctx context.Context, system string, history []chat.Message, query string) (string, error)
}

// Service runs completions through a compiled eino chain.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the chat model from configuration and compiles the
// shared prompt chain: system instruction, prior turns, current user query.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chatModel: chatModel, chain: runnable}, nil
}

// Generate produces one completion for the assembled conversation.
func (s *Service) Generate(ctx context.Context, system string, history []chat.Message, query string) (string, error) {
	response, err := s.chain.Invoke(ctx, s.buildChainInput(system, history, query))
	if err != nil {
		return "", fmt.Errorf("failed to run completion chain: %w", err)
	}
	return response.Content, nil
}

// Stream produces completion chunks for SSE delivery.
func (s *Service) Stream(ctx context.Context, system string, history []chat.Message, query string) (*schema.StreamReader[*schema.Message], error) {
	stream, err := s.chain.Stream(ctx, s.buildChainInput(system, history, query))
	if err != nil {
		return nil, fmt.Errorf("failed to stream completion chain: %w", err)
	}
	return stream, nil
}

func (s *Service) buildChainInput(system string, history []chat.Message, query string) map[string]any {
	return map[string]any{
		"system":  system,
		"history": buildHistoryMessages(history),
		"query":   query,
	}
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	history := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}
