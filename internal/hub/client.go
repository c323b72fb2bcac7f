package hub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	pkglog "github.com/landonharris622-gif/Primal-live/pkg/log"
)

// Config holds per-connection transport tuning.
type Config struct {
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBufferSize int           `mapstructure:"send_buffer_size"`
}

// DefaultConfig returns the transport defaults.
func DefaultConfig() Config {
	return Config{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 4096,
		SendBufferSize: 256,
	}
}

// Client adapts a gorilla websocket connection to the router's Conn.
// It owns the connection lifecycle: unjoined until the router processes
// a join envelope, deregistered exactly once when the transport dies.
type Client struct {
	ws     *websocket.Conn
	router *Router
	cfg    Config

	send   chan []byte
	mu     sync.Mutex
	closed bool
	once   sync.Once
}

// NewClient wraps an upgraded websocket connection.
func NewClient(ws *websocket.Conn, router *Router, cfg Config) *Client {
	return &Client{
		ws:     ws,
		router: router,
		cfg:    cfg,
		send:   make(chan []byte, cfg.SendBufferSize),
	}
}

// Start launches the read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// Send queues data for delivery. It never blocks: a full buffer or a
// closed connection yields an error and the caller skips the recipient.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close tears down the transport.
func (c *Client) Close() error {
	c.shutdown()
	return nil
}

// shutdown runs the terminal transition once, however many times the
// transport signals closure.
func (c *Client) shutdown() {
	c.once.Do(func() {
		c.router.HandleDisconnect(c)

		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		c.ws.Close()
	})
}

func (c *Client) readPump() {
	defer c.shutdown()

	c.ws.SetReadLimit(c.cfg.MaxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger := pkglog.L()
				logger.Debug().Err(err).Msg("websocket read error")
			}
			return
		}

		c.router.Dispatch(c, message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
