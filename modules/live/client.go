package live

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"style-assistant-server/modules/common/middleware"
	"style-assistant-server/modules/stylist"
)

// Client - 하나의 WebSocket 연결
type Client struct {
	id   string
	view string
	conn *websocket.Conn
	hub  *Hub
	log  zerolog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// 연결이 끊기면 진행 중인 요청도 취소
	ctx    context.Context
	cancel context.CancelFunc
}

func newClient(hub *Hub, conn *websocket.Conn, view string, l zerolog.Logger) *Client {
	ctx, cancel := context.WithCancel(l.WithContext(context.Background()))
	return &Client{
		id:     uuid.NewString(),
		view:   view,
		conn:   conn,
		hub:    hub,
		log:    l,
		send:   make(chan []byte, 16),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.done)
	})
}

// enqueue - writePump로 전달. 연결이 닫혔으면 버린다.
func (c *Client) enqueue(msg Outbound) {
	b, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Str("type", msg.Type).Msg("Error marshaling message")
		return
	}
	select {
	case c.send <- b:
	case <-c.done:
	}
}

// 클라이언트로부터 메시지 읽기
func (c *Client) readPump() {
	defer func() {
		c.close()
		c.hub.remove(c)
		c.conn.Close()
	}()

	for {
		var msg Inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}

		requestID := msg.RequestID
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.hub.metrics.Inc(c.ctx, "ws_messages_total", map[string]string{"type": msg.Type}, 1)

		op, ok := operations[msg.Type]
		if !ok {
			c.log.Warn().Str("type", msg.Type).Msg("Unknown message type")
			c.enqueue(Outbound{
				Type:         TypeError,
				RequestID:    requestID,
				ErrorMessage: "unknown message type: " + msg.Type,
				ErrorCode:    stylist.ErrCodeInvalidRequest,
			})
			continue
		}

		c.enqueue(Outbound{Type: TypeAccepted, RequestID: requestID})
		go c.handle(op, requestID, msg.Payload)
	}
}

func (c *Client) handle(op stylist.Operation, requestID string, payload []byte) {
	l := c.log.With().Str("request_id", requestID).Str("op", string(op)).Logger()
	ctx := middleware.WithRequestID(l.WithContext(c.ctx), requestID)

	resp, _ := c.hub.exec.Run(ctx, op, payload, c.view)
	if c.ctx.Err() != nil {
		l.Debug().Msg("Connection closed before result was ready")
		return
	}
	c.enqueue(fromResponse(requestID, resp))
}

// 클라이언트로 메시지 쓰기
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.Warn().Err(err).Msg("WebSocket write error")
				c.close()
				return
			}
		case <-c.done:
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
