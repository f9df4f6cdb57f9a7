package handlers

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/calebmah/streamchat/internal/config"
	"github.com/calebmah/streamchat/internal/services/session"
	"github.com/calebmah/streamchat/pkg/httpext"
	"github.com/calebmah/streamchat/pkg/ratelimit"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Password string `json:"password"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// HandleLogin verifies the submitted credential and issues a session
// cookie. The failure message is deliberately generic so it leaks
// nothing about which part of the credential was wrong.
func HandleLogin(sessions *session.Service, limiter *ratelimit.Limiter, w http.ResponseWriter, r *http.Request) {
	if !limiter.Allow(clientIP(r)) {
		log.Warn().Str("client_ip", r.RemoteAddr).Msg("Login rate limit exceeded")
		httpext.JsonError(w, "Too many login attempts", http.StatusTooManyRequests)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed login request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if req.Password != config.GetAuthPassword() {
		log.Warn().Str("client_ip", r.RemoteAddr).Msg("Login attempt with invalid credentials")
		httpext.JsonError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := sessions.CreateSession(w); err != nil {
		log.Error().Err(err).Msg("Failed to create session")
		httpext.JsonError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(okResponse{OK: true}); err != nil {
		log.Error().Err(err).Msg("Failed to encode login response")
	}
}

// HandleLogout clears the session cookie and the stored session
func HandleLogout(sessions *session.Service, w http.ResponseWriter, r *http.Request) {
	sessions.ClearSession(w, r)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(okResponse{OK: true}); err != nil {
		log.Error().Err(err).Msg("Failed to encode logout response")
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
