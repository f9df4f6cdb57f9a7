package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/calebmah/streamchat/internal/services/chat/models"
	"github.com/calebmah/streamchat/internal/stream"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnState is the persistent-socket transport's connection state.
type ConnState int32

const (
	Disconnected ConnState = iota
	Connecting
	Open
	Closed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrNotConnected is returned by Submit while the socket is not open.
var ErrNotConnected = errors.New("socket not connected")

// DefaultRetryDelay is the fixed wait between a drop and the single
// reconnect attempt it schedules. No backoff growth and no attempt
// cap: a single session has no peers to thunder against.
const DefaultRetryDelay = time.Second

// Conn is the subset of the websocket connection the socket client
// uses. *websocket.Conn satisfies it; tests substitute their own.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// DialFunc opens one connection attempt.
type DialFunc func(ctx context.Context) (Conn, error)

// EventSink consumes the decoded events of a response stream. Begin is
// invoked once per submission, before any of its events arrive, so a
// sink that latched onto a previous response's end sentinel is re-armed
// for the next turn. *State satisfies it.
type EventSink interface {
	Begin()
	Apply(stream.Event)
}

// Dial returns a DialFunc for a ws:// or wss:// URL.
func Dial(url string) DialFunc {
	return func(ctx context.Context) (Conn, error) {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Socket is the persistent-socket transport. A supervising loop owns
// the connection lifecycle and the retry timing, so the reconnect
// policy is inspectable and testable independent of the transport:
// every unexpected drop schedules exactly one reconnect attempt after
// a fixed delay, indefinitely, until Close.
type Socket struct {
	dial DialFunc
	sink EventSink

	mu         sync.RWMutex
	state      ConnState
	conn       Conn
	retryDelay time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

func NewSocket(dial DialFunc, sink EventSink) *Socket {
	return &Socket{
		dial:       dial,
		sink:       sink,
		retryDelay: DefaultRetryDelay,
		state:      Disconnected,
		closed:     make(chan struct{}),
	}
}

// SetRetryDelay overrides the fixed reconnect delay. This is primarily
// used for testing.
func (s *Socket) SetRetryDelay(d time.Duration) {
	s.mu.Lock()
	s.retryDelay = d
	s.mu.Unlock()
}

func (s *Socket) getRetryDelay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retryDelay
}

// State returns the current connection state
func (s *Socket) State() ConnState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Socket) setState(state ConnState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Socket) setConn(conn Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

// Run drives the connection state machine until Close is called or ctx
// is cancelled. It is the single owner of dialing and retry timing.
func (s *Socket) Run(ctx context.Context) {
	defer s.setState(Closed)

	for {
		select {
		case <-s.closed:
			return
		case <-ctx.Done():
			return
		default:
		}

		s.setState(Connecting)
		conn, err := s.dial(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Socket dial failed")
			s.setState(Disconnected)
			if !s.waitRetry(ctx) {
				return
			}
			continue
		}

		s.setConn(conn)
		s.setState(Open)
		log.Debug().Msg("Socket connected")

		s.readLoop(conn)

		s.setConn(nil)
		s.setState(Disconnected)

		select {
		case <-s.closed:
			return
		case <-ctx.Done():
			return
		default:
		}

		log.Debug().Dur("delay", s.getRetryDelay()).Msg("Socket dropped - scheduling reconnect")
		if !s.waitRetry(ctx) {
			return
		}
	}
}

// waitRetry blocks for the fixed delay. Returns false when the socket
// was closed or the context cancelled while waiting.
func (s *Socket) waitRetry(ctx context.Context) bool {
	timer := time.NewTimer(s.getRetryDelay())
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.closed:
		return false
	case <-ctx.Done():
		return false
	}
}

// readLoop decodes frames off one connection until it drops. Decoding
// and folding are synchronous: no event is applied while the next is
// being decoded.
func (s *Socket) readLoop(conn Conn) {
	dec := &stream.Decoder{}
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}
		for _, ev := range dec.Feed(payload) {
			s.sink.Apply(ev)
		}
	}
}

// Submit sends one completion request over the open connection. The
// sink is re-armed first, so a response that terminated the previous
// turn does not swallow this one's events.
func (s *Socket) Submit(req models.CompletionRequest) error {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	s.sink.Begin()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Close shuts the transport down: the current connection is closed and
// no further reconnects are scheduled.
func (s *Socket) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn != nil {
			conn.Close()
		}
	})
}
