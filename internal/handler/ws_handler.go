package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/landonharris622-gif/Primal-live/internal/hub"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// WSHandler upgrades HTTP requests to relay WebSocket connections.
type WSHandler struct {
	router *hub.Router
	cfg    hub.Config
}

// NewWSHandler creates a new WebSocket handler.
func NewWSHandler(router *hub.Router, cfg hub.Config) *WSHandler {
	return &WSHandler{router: router, cfg: cfg}
}

// HandleWebSocket handles WebSocket upgrade and starts the client pumps.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	l := log.Ctx(c.Request.Context())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(ws, h.router, h.cfg)
	client.Start()
}
