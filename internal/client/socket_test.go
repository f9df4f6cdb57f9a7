package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/calebmah/streamchat/internal/services/chat/models"
	"github.com/calebmah/streamchat/internal/stream"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nopSink discards events, for tests that only exercise the
// connection lifecycle.
type nopSink struct{}

func (nopSink) Begin()             {}
func (nopSink) Apply(stream.Event) {}

type fakeConn struct {
	msgs      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	writes [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		msgs: make(chan []byte),
		done: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case m := <-c.msgs:
		return websocket.TextMessage, m, nil
	case <-c.done:
		return 0, nil, errors.New("connection dropped")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.done:
		return errors.New("connection dropped")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return nil
}

// deliver blocks until the read loop has consumed the message, so the
// caller can sequence delivery against drops deterministically.
func (c *fakeConn) deliver(t *testing.T, b []byte) {
	t.Helper()
	select {
	case c.msgs <- b:
	case <-time.After(time.Second):
		t.Fatal("timed out delivering message to fake connection")
	}
}

func TestSocketReconnectLiveness(t *testing.T) {
	var dials int32
	conns := make(chan *fakeConn, 4)
	dial := func(ctx context.Context) (Conn, error) {
		atomic.AddInt32(&dials, 1)
		c := newFakeConn()
		conns <- c
		return c, nil
	}

	state := NewState()
	sock := NewSocket(dial, state)
	sock.SetRetryDelay(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sock.Run(ctx)

	var first *fakeConn
	select {
	case first = <-conns:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first connection")
	}
	assert.Eventually(t, func() bool { return sock.State() == Open }, time.Second, time.Millisecond)

	first.deliver(t, stream.EncodeFrame(stream.Token("Hel")))

	// Simulated unexpected closure
	first.Close()

	// Exactly one reconnect attempt is scheduled
	var second *fakeConn
	select {
	case second = <-conns:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reconnect")
	}
	assert.Eventually(t, func() bool { return sock.State() == Open }, time.Second, time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&dials))

	// Frame delivery resumes into the same, unmodified conversation state
	second.deliver(t, stream.EncodeFrame(stream.Token("lo")))
	second.deliver(t, stream.EncodeFrame(stream.UsageReport(stream.Usage{TotalTokens: 2, Cost: 0.1})))
	second.deliver(t, stream.EncodeFrame(stream.End()))

	assert.Eventually(t, func() bool { return state.Terminated() }, time.Second, time.Millisecond)

	conv := state.Conversation()
	require.Len(t, conv, 1)
	assert.Equal(t, "Hello", conv[0].Content)
	assert.Equal(t, 2, state.Usage().TotalTokens)

	// While the connection is healthy, no further dials happen
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&dials))

	sock.Close()
	assert.Eventually(t, func() bool { return sock.State() == Closed }, time.Second, time.Millisecond)
}

func TestSocketConsecutiveSubmissionsFoldSeparateTurns(t *testing.T) {
	conns := make(chan *fakeConn, 1)
	dial := func(ctx context.Context) (Conn, error) {
		c := newFakeConn()
		conns <- c
		return c, nil
	}

	state := NewState()
	sock := NewSocket(dial, state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sock.Run(ctx)
	defer sock.Close()

	conn := <-conns
	require.Eventually(t, func() bool { return sock.State() == Open }, time.Second, time.Millisecond)

	state.Append(models.Message{Role: "user", Content: "first"})
	require.NoError(t, sock.Submit(models.CompletionRequest{Messages: state.Conversation()}))
	conn.deliver(t, stream.EncodeFrame(stream.Token("answer one")))
	conn.deliver(t, stream.EncodeFrame(stream.UsageReport(stream.Usage{TotalTokens: 2, Cost: 0.1})))
	conn.deliver(t, stream.EncodeFrame(stream.End()))
	require.Eventually(t, func() bool { return state.Terminated() }, time.Second, time.Millisecond)

	// The second turn on the same connection must fold a fresh
	// assistant entry and replace the usage record wholesale
	state.Append(models.Message{Role: "user", Content: "second"})
	require.NoError(t, sock.Submit(models.CompletionRequest{Messages: state.Conversation()}))
	conn.deliver(t, stream.EncodeFrame(stream.Token("answer two")))
	conn.deliver(t, stream.EncodeFrame(stream.UsageReport(stream.Usage{TotalTokens: 5, Cost: 0.2})))
	conn.deliver(t, stream.EncodeFrame(stream.End()))
	require.Eventually(t, func() bool { return state.Terminated() }, time.Second, time.Millisecond)

	conv := state.Conversation()
	require.Len(t, conv, 4)
	assert.Equal(t, "answer one", conv[1].Content)
	assert.Equal(t, "second", conv[2].Content)
	assert.Equal(t, "answer two", conv[3].Content)
	assert.Equal(t, 5, state.Usage().TotalTokens)
	assert.Equal(t, 0.2, state.Usage().Cost)
}

func TestSocketRetryDelayAdjustableWhileRunning(t *testing.T) {
	var dials int32
	dial := func(ctx context.Context) (Conn, error) {
		atomic.AddInt32(&dials, 1)
		return nil, errors.New("dial refused")
	}

	sock := NewSocket(dial, nopSink{})
	sock.SetRetryDelay(5 * time.Millisecond)

	go sock.Run(context.Background())
	defer sock.Close()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&dials) >= 1 }, time.Second, time.Millisecond)

	// Shrinking the delay while the supervising loop is retrying must
	// not race with its reads of the setting
	sock.SetRetryDelay(time.Millisecond)
	before := atomic.LoadInt32(&dials)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&dials) > before }, time.Second, time.Millisecond)
}

func TestSocketCloseStopsReconnecting(t *testing.T) {
	var dials int32
	dial := func(ctx context.Context) (Conn, error) {
		atomic.AddInt32(&dials, 1)
		return nil, errors.New("dial refused")
	}

	sock := NewSocket(dial, nopSink{})
	sock.SetRetryDelay(5 * time.Millisecond)

	ctx := context.Background()
	go sock.Run(ctx)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&dials) >= 2 }, time.Second, time.Millisecond)

	sock.Close()
	assert.Eventually(t, func() bool { return sock.State() == Closed }, time.Second, time.Millisecond)

	settled := atomic.LoadInt32(&dials)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, atomic.LoadInt32(&dials))
}

func TestSocketSubmitRequiresOpenConnection(t *testing.T) {
	sock := NewSocket(func(ctx context.Context) (Conn, error) {
		return nil, errors.New("unused")
	}, nopSink{})

	err := sock.Submit(models.CompletionRequest{
		Messages: []models.Message{{Role: "user", Content: "hi"}},
	})
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSocketSubmitWritesToConnection(t *testing.T) {
	conns := make(chan *fakeConn, 1)
	dial := func(ctx context.Context) (Conn, error) {
		c := newFakeConn()
		conns <- c
		return c, nil
	}

	sock := NewSocket(dial, nopSink{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sock.Run(ctx)
	defer sock.Close()

	conn := <-conns
	assert.Eventually(t, func() bool { return sock.State() == Open }, time.Second, time.Millisecond)

	err := sock.Submit(models.CompletionRequest{
		Messages: []models.Message{{Role: "user", Content: "hi"}},
		Model:    "gpt-5-mini",
	})
	require.NoError(t, err)

	conn.mu.Lock()
	defer conn.mu.Unlock()
	require.Len(t, conn.writes, 1)
	assert.Contains(t, string(conn.writes[0]), `"model":"gpt-5-mini"`)
}
