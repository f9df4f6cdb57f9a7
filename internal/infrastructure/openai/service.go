package openai

import (
	"sync"

	"github.com/calebmah/streamchat/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// Service wraps the OpenAI client. A nil Service means the upstream is
// not configured; callers surface that as an unavailable error rather
// than failing at startup.
type Service struct {
	mu     sync.RWMutex
	client *openai.Client
}

func NewService() *Service {
	key := config.GetOpenAIKey()
	if key == "" {
		log.Warn().Msg("OpenAI service not configured - OPENAI_API_KEY missing")
		return nil
	}

	cfg := openai.DefaultConfig(key)
	if base := config.GetOpenAIBaseURL(); base != "" {
		cfg.BaseURL = base
	}

	return &Service{
		client: openai.NewClientWithConfig(cfg),
	}
}

// NewServiceWithClient builds a Service around an existing client.
// This is primarily used for testing against a local stub server.
func NewServiceWithClient(client *openai.Client) *Service {
	return &Service{client: client}
}

func (s *Service) GetClient() *openai.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}
