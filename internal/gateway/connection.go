package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Connection is one client's WebSocket session. It implements room.Conn so
// the registry and engine can address it without knowing the transport.
type Connection struct {
	id     string
	userID string
	conn   *websocket.Conn
	send   chan []byte
	gw     *Gateway
}

func newConnection(ws *websocket.Conn, gw *Gateway) *Connection {
	return &Connection{
		id:     uuid.New().String(),
		userID: uuid.New().String(),
		conn:   ws,
		send:   make(chan []byte, 256),
		gw:     gw,
	}
}

// UserID identifies this connection's user for question history tracking.
// Assigned at upgrade time; stable for the life of the connection.
func (c *Connection) UserID() string {
	return c.userID
}

// Send marshals v and queues it for delivery. A full buffer drops the
// message rather than blocking a message handler on a slow client.
func (c *Connection) Send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("connection_id", c.id).Msg("failed to marshal outbound message")
		return
	}

	select {
	case c.send <- data:
	default:
		log.Warn().Str("connection_id", c.id).Msg("send buffer full, dropping message")
	}
}

// writePump delivers queued messages and keeps the connection alive with
// pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.gw.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.gw.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("connection_id", c.id).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.gw.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads client messages and hands them to the dispatcher. When the
// read loop ends the player is removed from their room.
func (c *Connection) readPump() {
	defer func() {
		c.gw.dispatcher.HandleDisconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.gw.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.gw.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.gw.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", c.id).Msg("unexpected WebSocket close error")
			}
			break
		}

		c.gw.dispatcher.HandleMessage(c, message)
		c.conn.SetReadDeadline(time.Now().Add(c.gw.config.ReadTimeout))
	}
}
