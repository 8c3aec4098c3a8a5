package ws

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"tadreeb/internal/graphsync"
)

type SyncProgressEvent struct {
	Type      string          `json:"type"`
	Event     graphsync.Event `json:"event"`
	Timestamp string          `json:"timestamp"`
}

var defaultHub atomic.Pointer[Hub]

func SetDefaultHub(h *Hub) {
	defaultHub.Store(h)
}

// NotifySyncProgress is the graphsync.Notifier wired into the syncer. It is
// safe to call before a hub exists.
func NotifySyncProgress(e graphsync.Event) {
	h := defaultHub.Load()
	if h == nil {
		return
	}

	evt := SyncProgressEvent{
		Type:      "graph_sync",
		Event:     e,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	h.Broadcast(b)
}
