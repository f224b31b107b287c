// Package chat answers assistant messages, selecting between the configured
// provider and a deterministic offline mock.
package chat

import (
	"context"
	"fmt"

	"github.com/mibolsillo/server/internal/common"
	"github.com/mibolsillo/server/internal/interfaces"
)

// Service implements ChatService. When no provider is configured (no API
// key at startup) it answers with a deterministic mock reply that makes no
// external calls.
type Service struct {
	provider interfaces.ChatProvider
	logger   *common.Logger
}

// NewService creates a chat service. provider may be nil, selecting the
// offline mock.
func NewService(provider interfaces.ChatProvider, logger *common.Logger) *Service {
	return &Service{
		provider: provider,
		logger:   logger,
	}
}

// MockReply is the deterministic offline reply echoing the input message.
func MockReply(message string) string {
	return fmt.Sprintf("IA (Mock): Recibí tu mensaje: %q. Como no hay GEMINI_API_KEY configurada, respondo esto.", message)
}

// GetChatResponse returns the assistant's reply for message. Provider-level
// failures on the live path propagate to the caller; the mock path never
// fails.
func (s *Service) GetChatResponse(ctx context.Context, message string) (string, error) {
	if s.provider == nil {
		s.logger.Debug().Msg("No chat provider configured, using mock reply")
		return MockReply(message), nil
	}

	reply, err := s.provider.GetChatResponse(ctx, message)
	if err != nil {
		s.logger.Error().Err(err).Msg("Chat provider request failed")
		return "", err
	}
	return reply, nil
}

// Compile-time check
var _ interfaces.ChatService = (*Service)(nil)
