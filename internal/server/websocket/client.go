// Package websocket streams will-change notifications to WebSocket clients.
//
// Each connection is one subscriber. A client connects to the object-wide
// publisher, or to a single property's publisher with ?property=<id>, and
// receives a will_change event for every notification from then on.
//
// Each Client manages:
//   - A goroutine for reading incoming messages (readPump)
//   - A goroutine for writing outgoing messages (writePump)
//   - Automatic ping/pong for connection health monitoring
//
// Thread Safety:
//   - Send() is safe to call from any goroutine
//   - Close() is safe to call multiple times
package websocket

import (
	"time"

	"github.com/brianly1003/observe/internal/server/common"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// CommandHandler handles a message read from a client.
type CommandHandler func(client *Client, message []byte)

// Client represents a WebSocket client connection.
type Client struct {
	id             string
	scope          string
	conn           *websocket.Conn
	buf            *common.SendBuffer
	commandHandler CommandHandler
	onClose        func(c *Client)
}

// NewClient creates a new WebSocket client.
func NewClient(conn *websocket.Conn, scope string, commandHandler CommandHandler, onClose func(c *Client)) *Client {
	id := uuid.New().String()
	return &Client{
		id:             id,
		scope:          scope,
		conn:           conn,
		buf:            common.NewSendBuffer(id, common.SendBufferSize),
		commandHandler: commandHandler,
		onClose:        onClose,
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() string {
	return c.id
}

// Scope returns the property the client is subscribed to, or "" for the
// whole object.
func (c *Client) Scope() string {
	return c.scope
}

// Start starts the client's read and write pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// Send queues a message to be sent to the client. Messages sent to a closed
// client, or to one whose buffer is full, are dropped.
func (c *Client) Send(message []byte) {
	_ = c.buf.Send(message)
}

// SendLatest queues a message that supersedes any unsent one queued the
// same way.
func (c *Client) SendLatest(message []byte) {
	_ = c.buf.SendLatest(message)
}

// Close closes the client connection.
func (c *Client) Close() {
	c.buf.Close()
}

// Done returns a channel that's closed when the client is closed.
func (c *Client) Done() <-chan struct{} {
	return c.buf.Done()
}

// IsClosed reports whether Close has been called.
func (c *Client) IsClosed() bool {
	return c.buf.IsClosed()
}

func (c *Client) readPump() {
	defer func() {
		c.Close()
		_ = c.conn.Close()
		if c.onClose != nil {
			c.onClose(c)
		}
	}()

	c.conn.SetReadLimit(common.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(common.PongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(common.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client_id", c.id).Msg("websocket read error")
			}
			return
		}

		if c.commandHandler != nil {
			c.commandHandler(c, message)
		}
	}
}

// writePump sends each queued message as its own frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(common.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.SetWriteDeadline(time.Now().Add(common.WriteWait))
		_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.buf.Done():
			return

		case <-c.buf.Ready():
			for _, message := range c.buf.Drain() {
				_ = c.conn.SetWriteDeadline(time.Now().Add(common.WriteWait))
				if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Debug().Err(err).Str("client_id", c.id).Msg("write error")
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(common.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("client_id", c.id).Msg("ping error")
				return
			}
		}
	}
}
