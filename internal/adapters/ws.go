package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dnelfhmi/real-time-whiteboard/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const writeWait = 5 * time.Second

// WsBoardConn wraps one participant's websocket behind a buffered send
// queue so that enqueuing never blocks the session's critical section.
type WsBoardConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func NewWsBoardConn(conn *websocket.Conn) *WsBoardConn {
	return &WsBoardConn{
		conn: conn,
		send: make(chan []byte, 64),
	}
}

func (c *WsBoardConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsBoardConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.mu.Unlock()
}

// WritePump drains the send queue to the network. It owns the transport:
// frames already queued still flush after Close because a closed channel
// yields its buffered items first.
func (c *WsBoardConn) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "adapters.ws").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "adapters.ws").Msg("writePump write error")
				return
			}
		}
	}
}

// WsEndpoint adapts a WsBoardConn to the core's push capability. Every
// delivery is a non-blocking enqueue of one JSON envelope.
type WsEndpoint struct {
	conn *WsBoardConn
}

func NewEndpoint(conn *WsBoardConn) *WsEndpoint {
	return &WsEndpoint{conn: conn}
}

func (e *WsEndpoint) DeliverEvent(payload string) error {
	return e.push(eventMsg{Type: "event", Payload: payload})
}

func (e *WsEndpoint) DeliverClear() error {
	return e.push(simpleMsg{Type: "cleared"})
}

func (e *WsEndpoint) DeliverMembership(users []domain.UserID) error {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = string(u)
	}
	return e.push(membershipMsg{Type: "membership", Users: names})
}

func (e *WsEndpoint) DeliverChat(message string) error {
	return e.push(chatMsg{Type: "chat", Message: message})
}

func (e *WsEndpoint) DeliverDecision(approved bool) error {
	return e.push(decisionMsg{Type: "decision", Approved: approved})
}

func (e *WsEndpoint) DeliverJoinRequest(applicant domain.UserID) error {
	return e.push(joinRequestMsg{Type: "join_request", Applicant: string(applicant)})
}

func (e *WsEndpoint) DeliverNotice(message string) error {
	return e.push(noticeMsg{Type: "notice", Message: message})
}

func (e *WsEndpoint) DeliverDisconnect() error {
	return e.push(simpleMsg{Type: "disconnect"})
}

func (e *WsEndpoint) push(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return e.conn.TrySend(b)
}
