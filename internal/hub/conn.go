package hub

import "errors"

var (
	// ErrConnClosed is returned by Send after the connection shut down.
	ErrConnClosed = errors.New("connection closed")
	// ErrSendBufferFull is returned when a slow consumer's buffer is full.
	ErrSendBufferFull = errors.New("send buffer full")
)

// Conn is a writable relay transport. The registry and router only ever
// test writability (via Send errors) and push bytes; the concrete
// websocket client lives in this package, mocks live in tests.
type Conn interface {
	Send(data []byte) error
	Close() error
}
