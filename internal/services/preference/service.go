// Package preference persists the user's selected model across page
// reloads. The completion pipeline never touches this store; it only
// receives the resolved model string in the submission payload.
package preference

import (
	"context"
	"sync"

	"github.com/calebmah/streamchat/internal/infrastructure/redis"
)

const modelKey = "preference:model"

// Service is a get/set capability over the external key-value store,
// with an in-memory fallback when Redis is unavailable.
type Service struct {
	redisService *redis.Service

	mu     sync.RWMutex
	memory string
}

func NewService(redisService *redis.Service) *Service {
	return &Service{redisService: redisService}
}

// GetModel returns the persisted model selection, or "" when none is set.
func (s *Service) GetModel(ctx context.Context) string {
	if s.redisService == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.memory
	}

	value, err := s.redisService.Get(ctx, modelKey)
	if err != nil {
		return ""
	}
	return value
}

// SetModel persists the model selection. No expiration: the preference
// survives until replaced.
func (s *Service) SetModel(ctx context.Context, model string) error {
	if s.redisService == nil {
		s.mu.Lock()
		s.memory = model
		s.mu.Unlock()
		return nil
	}
	return s.redisService.Set(ctx, modelKey, model, 0)
}
