package client

import (
	"context"

	"github.com/calebmah/streamchat/internal/services/chat/models"
	"github.com/calebmah/streamchat/internal/services/command"
	"github.com/calebmah/streamchat/internal/stream"
	"github.com/rs/zerolog/log"
)

// Submitter is the pluggable transport behind a Session: one submission
// in, framed events out. HTTPTransport implements it directly; the
// persistent-socket variant delivers events through its own read loop.
type Submitter interface {
	Submit(ctx context.Context, req models.CompletionRequest, apply func(stream.Event)) error
}

// Session ties user input to the completion pipeline: input is run
// through the command preprocessor first, and only ordinary messages
// and system injections reach the transport.
type Session struct {
	state     *State
	transport Submitter
	model     string
}

func NewSession(transport Submitter) *Session {
	return &Session{
		state:     NewState(),
		transport: transport,
	}
}

// State exposes the session's conversation and usage state
func (s *Session) State() *State {
	return s.state
}

// SetModel selects the model sent with subsequent submissions. Empty
// means the gateway resolves its default.
func (s *Session) SetModel(model string) {
	s.model = model
}

// Send classifies one line of input and acts on it. Slash commands
// alter local state without a round-trip; everything else becomes a
// conversation turn and is submitted.
func (s *Session) Send(ctx context.Context, input string) error {
	result := command.Parse(input)

	switch result.Kind {
	case command.Reset:
		s.state.Reset()
		return nil
	case command.Tool:
		// Tool payloads are recognised but not executed.
		log.Info().
			Str("tool", result.Tool).
			Str("prompt", result.Prompt).
			Msg("Tool invocation recognised - not executed")
		return nil
	case command.System:
		s.state.Append(models.Message{Role: "system", Content: result.Text})
	default:
		s.state.Append(models.Message{Role: "user", Content: input})
	}

	s.state.Begin()
	req := models.CompletionRequest{
		Messages: s.state.Conversation(),
		Model:    s.model,
	}
	return s.transport.Submit(ctx, req, s.state.Apply)
}
