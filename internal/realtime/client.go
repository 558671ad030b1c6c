package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// inboundFrame is the only client-to-server message: a typing signal.
// Everything else flows through the HTTP API.
type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	Typing         bool   `json:"typing"`
}

// Client represents a single WebSocket connection
type Client struct {
	hub      *Hub
	presence *Coordinator
	conn     *websocket.Conn
	send     chan []byte
	userID   string
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, presence *Coordinator, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:      hub,
		presence: presence,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   userID,
	}
}

// ReadPump reads typing frames from the WebSocket (and handles pong/close).
// Disconnect clears any typing state the user left behind.
func (c *Client) ReadPump() {
	defer func() {
		if c.presence != nil {
			c.presence.ClearUser(c.userID)
		}
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		if frame.Type == EventTyping && c.presence != nil && frame.ConversationID != "" {
			c.presence.SetTyping(frame.ConversationID, c.userID, frame.Typing)
		}
	}
}

// WritePump sends events to the WebSocket
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message) //nolint:errcheck
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
