package ws

import (
	"log"
	"sync"
)

// Hub fans sync progress broadcasts out to every connected subscriber.
// Subscribers never send; a slow one is dropped rather than allowed to stall
// the stream.
type Hub struct {
	subscribers map[*subscriber]bool
	broadcast   chan []byte
	register    chan *subscriber
	unregister  chan *subscriber
	mutex       sync.RWMutex
	logger      *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]bool),
		broadcast:   make(chan []byte, 1024),
		register:    make(chan *subscriber, 128),
		unregister:  make(chan *subscriber, 128),
		logger:      logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			if sub == nil {
				continue
			}
			h.mutex.Lock()
			h.subscribers[sub] = true
			total := len(h.subscribers)
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Printf("[SyncWS] subscriber connected | total=%d", total)
			}

		case sub := <-h.unregister:
			if sub == nil {
				continue
			}
			h.mutex.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.send)
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.RLock()
			snapshot := make([]*subscriber, 0, len(h.subscribers))
			for s := range h.subscribers {
				snapshot = append(snapshot, s)
			}
			h.mutex.RUnlock()

			for _, sub := range snapshot {
				select {
				case sub.send <- message:
				default:
					h.unregister <- sub
				}
			}
		}
	}
}

func (h *Hub) subscribe(sub *subscriber) {
	if h == nil {
		return
	}
	h.register <- sub
}

func (h *Hub) unsubscribe(sub *subscriber) {
	if h == nil {
		return
	}
	h.unregister <- sub
}

func (h *Hub) Broadcast(message []byte) {
	if h == nil {
		return
	}
	select {
	case h.broadcast <- message:
	default:
		if h.logger != nil {
			h.logger.Printf("[SyncWS] broadcast dropped | reason=buffer_full")
		}
	}
}

func (h *Hub) SubscriberCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.subscribers)
}
