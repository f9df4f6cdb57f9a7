package connections

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestManagerTracksConnections(t *testing.T) {
	m := NewManager(DefaultTimeouts)

	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	assert.Equal(t, 0, m.ConnectionCount())

	m.AddConnection(conn1)
	m.AddConnection(conn2)
	assert.Equal(t, 2, m.ConnectionCount())
	assert.True(t, m.HasConnection(conn1))

	m.RemoveConnection(conn1)
	assert.Equal(t, 1, m.ConnectionCount())
	assert.False(t, m.HasConnection(conn1))
	assert.True(t, m.HasConnection(conn2))
}

func TestManagerTimeouts(t *testing.T) {
	custom := TimeoutConfig{
		PongWait:   time.Second,
		PingPeriod: 900 * time.Millisecond,
		WriteWait:  500 * time.Millisecond,
	}
	m := NewManager(custom)
	assert.Equal(t, custom, m.Timeouts())
}
