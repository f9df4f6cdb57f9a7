// Package client consumes the gateway's framed event stream and folds
// it into conversation state, with a choice of one-shot HTTP or
// persistent-socket transports.
package client

import (
	"sync"

	"github.com/calebmah/streamchat/internal/services/chat/models"
	"github.com/calebmah/streamchat/internal/stream"
)

// State holds the two pieces of client session state: the ordered
// conversation and the latest usage record. Decoding and folding are
// synchronous with respect to each other; the mutex only guards
// concurrent readers (e.g. a render loop) against the transport
// goroutine.
type State struct {
	mu         sync.RWMutex
	messages   []models.Message
	usage      stream.Usage
	terminated bool
}

func NewState() *State {
	return &State{}
}

// Apply folds one event into the state. After the end sentinel has been
// applied for the current response, further events are ignored until
// Begin is called for the next submission.
func (s *State) Apply(ev stream.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminated {
		return
	}

	switch ev.Kind {
	case stream.KindToken:
		// Grow the trailing assistant message in place; a logical
		// assistant turn is built from many small appends, never
		// re-created per token.
		if n := len(s.messages); n > 0 && s.messages[n-1].Role == "assistant" {
			s.messages[n-1].Content += ev.Token
			return
		}
		s.messages = append(s.messages, models.Message{Role: "assistant", Content: ev.Token})
	case stream.KindUsage:
		// Replaced wholesale, never accumulated.
		s.usage = ev.Usage
	case stream.KindEnd:
		s.terminated = true
	}
}

// Begin marks the start of a new submission, re-arming the state after
// a previous response terminated.
func (s *State) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminated = false
}

// Append adds a message to the conversation (a user or system turn
// composed locally before submission).
func (s *State) Append(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Reset clears the conversation and usage state
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.usage = stream.Usage{}
	s.terminated = false
}

// Conversation returns a copy of the ordered conversation
func (s *State) Conversation() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Usage returns the latest usage record
func (s *State) Usage() stream.Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage
}

// Terminated reports whether the end sentinel for the current response
// has been received.
func (s *State) Terminated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.terminated
}
