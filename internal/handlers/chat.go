package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/calebmah/streamchat/internal/services/chat"
	"github.com/calebmah/streamchat/internal/services/chat/models"
	"github.com/calebmah/streamchat/internal/stream"
	"github.com/calebmah/streamchat/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// HandleChatCompletion handles completion submissions and streams the
// response back as framed events. Error responses are only written
// before the first frame; once the stream is open a failure closes it
// without the usage report and end sentinel.
func HandleChatCompletion(chatService chat.Service, w http.ResponseWriter, r *http.Request) {
	var req models.CompletionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	// use a single instance of Validate, it caches struct info
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httpext.JsonError(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	log.Info().
		Int("message_count", len(req.Messages)).
		Str("model", req.Model).
		Str("client_ip", r.RemoteAddr).
		Msg("Received completion submission")

	opened := false
	emit := func(ev stream.Event) error {
		if !opened {
			w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache, no-transform")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			opened = true
		}
		if _, err := w.Write(stream.EncodeFrame(ev)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	if err := chatService.StreamCompletion(r.Context(), req, emit); err != nil {
		if opened {
			// Tokens already on the wire stand; the client sees the
			// missing sentinel and treats usage as unknown.
			log.Error().Err(err).Msg("Completion stream aborted mid-flight")
			return
		}
		if errors.Is(err, chat.ErrUpstreamUnavailable) {
			log.Error().Err(err).Msg("Completion rejected - upstream not configured")
			httpext.JsonError(w, "Upstream provider unavailable", http.StatusServiceUnavailable)
			return
		}
		log.Error().Err(err).Msg("Failed to process completion")
		httpext.JsonError(w, "Failed to process completion", http.StatusBadGateway)
	}
}
