package hub

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	mu       sync.Mutex
	received [][]byte
	closed   bool
	sendErr  error
}

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.received = append(m.received, data)
	return nil
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) getReceived() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.received))
	copy(out, m.received)
	return out
}

func TestRegistry_Join(t *testing.T) {
	t.Run("assigns requested peer id", func(t *testing.T) {
		r := NewRegistry()
		conn := &mockConn{}

		peerID := r.Join(conn, "room1", "peer-a")

		assert.Equal(t, "peer-a", peerID)
		got, ok := r.PeerID(conn)
		require.True(t, ok)
		assert.Equal(t, "peer-a", got)
	})

	t.Run("generates peer id when none supplied", func(t *testing.T) {
		r := NewRegistry()
		conn := &mockConn{}

		peerID := r.Join(conn, "room1", "")

		assert.NotEmpty(t, peerID)
		assert.Contains(t, r.ConnectionsIn("room1"), Conn(conn))
	})

	t.Run("rejoin same room overwrites peer id", func(t *testing.T) {
		r := NewRegistry()
		conn := &mockConn{}

		r.Join(conn, "room1", "old-id")
		peerID := r.Join(conn, "room1", "new-id")

		assert.Equal(t, "new-id", peerID)
		got, _ := r.PeerID(conn)
		assert.Equal(t, "new-id", got)

		// Still a single membership.
		assert.Len(t, r.ConnectionsIn("room1"), 1)
	})

	t.Run("joining another room moves the connection", func(t *testing.T) {
		r := NewRegistry()
		conn := &mockConn{}

		r.Join(conn, "room1", "peer-a")
		r.Join(conn, "room2", "peer-a")

		assert.Empty(t, r.ConnectionsIn("room1"))
		assert.Len(t, r.ConnectionsIn("room2"), 1)

		rooms, conns := r.Stats()
		assert.Equal(t, 1, rooms)
		assert.Equal(t, 1, conns)
	})
}

func TestRegistry_Leave(t *testing.T) {
	t.Run("returns held room and peer id", func(t *testing.T) {
		r := NewRegistry()
		conn := &mockConn{}
		r.Join(conn, "room1", "peer-a")

		room, peerID, ok := r.Leave(conn)

		require.True(t, ok)
		assert.Equal(t, "room1", room)
		assert.Equal(t, "peer-a", peerID)
		assert.Empty(t, r.ConnectionsIn("room1"))
	})

	t.Run("never-joined connection", func(t *testing.T) {
		r := NewRegistry()

		_, _, ok := r.Leave(&mockConn{})

		assert.False(t, ok)
	})

	t.Run("second leave is a no-op", func(t *testing.T) {
		r := NewRegistry()
		conn := &mockConn{}
		r.Join(conn, "room1", "peer-a")

		_, _, ok := r.Leave(conn)
		require.True(t, ok)
		_, _, ok = r.Leave(conn)
		assert.False(t, ok)
	})

	t.Run("empty rooms are pruned", func(t *testing.T) {
		r := NewRegistry()
		conn := &mockConn{}
		r.Join(conn, "room1", "peer-a")
		r.Leave(conn)

		rooms, conns := r.Stats()
		assert.Equal(t, 0, rooms)
		assert.Equal(t, 0, conns)
	})
}

func TestRegistry_ConnectionsIn(t *testing.T) {
	r := NewRegistry()
	a := &mockConn{}
	b := &mockConn{}
	c := &mockConn{}
	r.Join(a, "room1", "a")
	r.Join(b, "room1", "b")
	r.Join(c, "room2", "c")

	assert.Len(t, r.ConnectionsIn("room1"), 2)
	assert.Len(t, r.ConnectionsIn("room2"), 1)
	assert.Nil(t, r.ConnectionsIn("missing"))
}

func TestRegistry_ConcurrentJoinLeave(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := &mockConn{}
			r.Join(conn, "room1", "")
			r.Leave(conn)
		}()
	}
	wg.Wait()

	rooms, conns := r.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, conns)
}

var errUnwritable = errors.New("unwritable")
