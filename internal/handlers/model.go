package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/calebmah/streamchat/internal/services/chat"
	"github.com/calebmah/streamchat/internal/services/preference"
	"github.com/calebmah/streamchat/pkg/httpext"
	"github.com/rs/zerolog/log"
)

type modelResponse struct {
	Model string `json:"model"`
}

type modelRequest struct {
	Model string `json:"model"`
}

// HandleGetModel returns the persisted model selection, falling back to
// the gateway's resolved default when nothing has been saved yet.
func HandleGetModel(prefs *preference.Service, chatService chat.Service, w http.ResponseWriter, r *http.Request) {
	model := prefs.GetModel(r.Context())
	if model == "" {
		model = chatService.ResolveModel("")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(modelResponse{Model: model}); err != nil {
		log.Error().Err(err).Msg("Failed to encode model response")
	}
}

// HandleSetModel persists the model selection
func HandleSetModel(prefs *preference.Service, w http.ResponseWriter, r *http.Request) {
	var req modelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed model request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if req.Model == "" {
		httpext.JsonError(w, "Model cannot be empty", http.StatusBadRequest)
		return
	}

	if err := prefs.SetModel(r.Context(), req.Model); err != nil {
		log.Error().Err(err).Str("model", req.Model).Msg("Failed to persist model selection")
		httpext.JsonError(w, "Failed to save model selection", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(okResponse{OK: true}); err != nil {
		log.Error().Err(err).Msg("Failed to encode model response")
	}
}
