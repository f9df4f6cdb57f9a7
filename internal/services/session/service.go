// Package session issues and validates the signed cookie that marks a
// browser as having passed the login gate. Sessions live in Redis when
// available, else in memory.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/calebmah/streamchat/internal/config"
	"github.com/calebmah/streamchat/internal/infrastructure/redis"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionLifetime = 30 * 24 * time.Hour
	storeKeyPrefix  = "session:"
)

type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

type Store interface {
	Set(ctx context.Context, sessionID string, claims *Claims) error
	Get(ctx context.Context, sessionID string) (*Claims, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	redisService *redis.Service
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Claims
}

type Service struct {
	store Store
}

func NewService(redisService *redis.Service) *Service {
	var store Store
	if redisService != nil && redisService.Ping(context.Background()) == nil {
		store = &RedisStore{redisService: redisService}
	} else {
		store = newMemoryStore()
	}

	return &Service{store: store}
}

func newMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Claims),
	}
}

func (rs *RedisStore) Set(ctx context.Context, sessionID string, claims *Claims) error {
	data, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	return rs.redisService.Set(ctx, storeKeyPrefix+sessionID, string(data), sessionLifetime)
}

func (rs *RedisStore) Get(ctx context.Context, sessionID string) (*Claims, error) {
	data, err := rs.redisService.Get(ctx, storeKeyPrefix+sessionID)
	if err != nil {
		if redis.IsMissing(err) {
			return nil, nil
		}
		return nil, err
	}

	var claims Claims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Delete(ctx, storeKeyPrefix+sessionID)
}

func (ms *MemoryStore) Set(ctx context.Context, sessionID string, claims *Claims) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.sessions[sessionID] = claims
	return nil
}

func (ms *MemoryStore) Get(ctx context.Context, sessionID string) (*Claims, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	claims, exists := ms.sessions[sessionID]
	if !exists {
		return nil, nil
	}
	return claims, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, sessionID)
	return nil
}

// CreateSession generates a new session cookie and sets it in the response
func (s *Service) CreateSession(w http.ResponseWriter) error {
	ctx := context.Background()

	sessionID := uuid.New().String()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        sessionID,
		},
		SessionID: sessionID,
	}

	if err := s.store.Set(ctx, sessionID, claims); err != nil {
		return err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(config.GetJWTSecret())
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    signedToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionLifetime),
	})
	return nil
}

// IsAuthenticated reports whether the request carries a valid session
// cookie backed by the store. The result is stable for the lifetime of
// the request; no I/O happens beyond the store lookup.
func (s *Service) IsAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(config.GetSessionCookieName())
	if err != nil {
		return false
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return config.GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return false
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return false
	}

	stored, err := s.store.Get(r.Context(), claims.SessionID)
	return err == nil && stored != nil
}

// ClearSession removes the session cookie and the stored session
func (s *Service) ClearSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(config.GetSessionCookieName()); err == nil {
		token, err := jwt.ParseWithClaims(cookie.Value, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return config.GetJWTSecret(), nil
		})
		if err == nil {
			if claims, ok := token.Claims.(*Claims); ok {
				_ = s.store.Delete(r.Context(), claims.SessionID)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.GetSessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
