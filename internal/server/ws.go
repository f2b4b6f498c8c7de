package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is delegated to the CORS layer.
		return true
	},
}

// wsFrame is the JSON envelope delivered to websocket subscribers.
type wsFrame struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// inboundFrame is what clients may send; only user_message frames get an
// application-level acknowledgement.
type inboundFrame struct {
	Type string `json:"type"`
}

// handleWebSocket upgrades the connection and mirrors every broadcast event
// to it until the client disconnects.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}

	subscriberID := uuid.New().String()
	events := s.hub.Subscribe(subscriberID)
	send := make(chan wsFrame, 16)
	done := make(chan struct{})

	s.logger.Info("websocket subscriber %s connected", subscriberID)

	// Connect acknowledgement.
	send <- wsFrame{Type: "connection_status", Payload: map[string]any{"status": "connected"}}

	// Forward hub events into the connection's send queue.
	go func() {
		for event := range events {
			select {
			case send <- wsFrame{Type: event.Type, Payload: event.Payload}:
			case <-done:
				return
			}
		}
	}()

	// Write pump: owns all writes to the connection.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		defer func() { _ = conn.Close() }()

		for {
			select {
			case frame := <-send:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(frame); err != nil {
					return
				}
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	}()

	// Read pump: runs in the handler goroutine until the client goes away.
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var frame inboundFrame
		if json.Unmarshal(data, &frame) != nil {
			continue
		}
		// Inbound user messages are processed through the HTTP analyze
		// endpoint; the channel only acknowledges receipt.
		if frame.Type == "user_message" {
			select {
			case send <- wsFrame{Type: "message_received", Payload: map[string]any{"status": "received"}}:
			case <-done:
			}
		}
	}

	close(done)
	s.hub.Unsubscribe(subscriberID)
	s.logger.Info("websocket subscriber %s disconnected", subscriberID)
}
