package ws

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// subscriber is one connection on the sync progress stream. The stream is
// one-way: inbound data frames are discarded, the read side exists only to
// service control messages and detect the peer going away.
type subscriber struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func newSubscriber(hub *Hub, conn *websocket.Conn) *subscriber {
	return &subscriber{hub: hub, conn: conn, send: make(chan []byte, 64)}
}

func (s *subscriber) start() {
	go s.writeLoop()
	go s.readLoop()
}

func (s *subscriber) readLoop() {
	defer func() {
		s.hub.unsubscribe(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *subscriber) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
