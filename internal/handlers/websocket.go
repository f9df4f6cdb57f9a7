package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/calebmah/streamchat/internal/connections"
	"github.com/calebmah/streamchat/internal/services/chat"
	"github.com/calebmah/streamchat/internal/services/chat/models"
	"github.com/calebmah/streamchat/internal/stream"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Single-origin deployment behind the access gate.
		return true
	},
}

// HandleWebSocket is the persistent-socket variant of the completion
// endpoint. Each inbound text message is one submission; the response
// events are written back one frame per message, in the same framing
// bytes as the one-shot streaming endpoint. Submissions on one
// connection are handled serially; there is never more than one
// in-flight completion per conversation.
func HandleWebSocket(chatService chat.Service, manager *connections.Manager, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	manager.AddConnection(conn)
	defer func() {
		manager.RemoveConnection(conn)
		conn.Close()
	}()

	timeouts := manager.Timeouts()

	if err := conn.SetReadDeadline(time.Now().Add(timeouts.PongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(timeouts.PingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				deadline := time.Now().Add(timeouts.WriteWait)
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	emit := func(ev stream.Event) error {
		if err := conn.SetWriteDeadline(time.Now().Add(timeouts.WriteWait)); err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, stream.EncodeFrame(ev))
	}

	for {
		if err := conn.SetReadDeadline(time.Now().Add(timeouts.PongWait)); err != nil {
			return
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected WebSocket closure")
			}
			return
		}

		var req models.CompletionRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			log.Warn().Err(err).Msg("Client sent malformed submission over WebSocket")
			continue
		}
		if len(req.Messages) == 0 {
			continue
		}

		if err := chatService.StreamCompletion(r.Context(), req, emit); err != nil {
			// Closing without the sentinel tells the client that the
			// tokens it rendered stand and usage is unknown. The client
			// owns the reconnect policy.
			log.Error().Err(err).Msg("WebSocket completion failed - closing connection")
			return
		}
	}
}
