// Package gateway accepts WebSocket connections and routes client messages
// to the room registry and quiz engine, relaying their events back to the
// relevant connections.
package gateway

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// ConnectionConfig holds tuning for individual WebSocket connections.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns the default WebSocket configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// Gateway upgrades HTTP requests to WebSocket connections and dispatches
// their messages.
type Gateway struct {
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
	config     ConnectionConfig
}

// New creates a Gateway over the given dispatcher.
func New(config ConnectionConfig, dispatcher *Dispatcher) *Gateway {
	return &Gateway{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// HandleWS upgrades an HTTP request and starts the connection's pumps.
func (g *Gateway) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade WebSocket connection")
		return
	}

	conn := newConnection(ws, g)

	go conn.writePump()
	go conn.readPump()

	log.Info().
		Str("connection_id", conn.id).
		Str("user_id", conn.userID).
		Msg("WebSocket connection established")
}

// RegisterRoutes registers the WebSocket route on mux.
func (g *Gateway) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", g.HandleWS)
}
