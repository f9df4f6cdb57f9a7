package services

import (
	openaisvc "github.com/calebmah/streamchat/internal/infrastructure/openai"
	redissvc "github.com/calebmah/streamchat/internal/infrastructure/redis"
	"github.com/calebmah/streamchat/internal/services/chat"
	"github.com/calebmah/streamchat/internal/services/preference"
	"github.com/calebmah/streamchat/internal/services/session"
	"github.com/rs/zerolog/log"
)

type Services struct {
	openAIService     *openaisvc.Service
	redisService      *redissvc.Service
	chatService       *chat.Implementation
	sessionService    *session.Service
	preferenceService *preference.Service
}

// InitializeServices builds the service graph. Each call returns a
// fresh, independent set; there is no shared singleton behind it.
func InitializeServices() *Services {
	log.Info().Msg("Initializing core services")

	// Redis is optional; dependents fall back to in-memory stores
	redisService := redissvc.NewService()

	sessionService := session.NewService(redisService)
	preferenceService := preference.NewService(redisService)

	// A nil OpenAI service is tolerated here: submissions are rejected
	// per-request with an upstream-unavailable error instead of the
	// whole process refusing to start.
	openAIService := openaisvc.NewService()
	chatService := chat.NewService(openAIService)

	log.Info().Msg("All services initialized")

	return &Services{
		openAIService:     openAIService,
		redisService:      redisService,
		chatService:       chatService,
		sessionService:    sessionService,
		preferenceService: preferenceService,
	}
}

// GetChatService returns the chat service
func (s *Services) GetChatService() *chat.Implementation {
	return s.chatService
}

// GetSessionService returns the session service
func (s *Services) GetSessionService() *session.Service {
	return s.sessionService
}

// GetPreferenceService returns the model preference service
func (s *Services) GetPreferenceService() *preference.Service {
	return s.preferenceService
}
