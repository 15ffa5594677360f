package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/dbehnke/viterbi224/pkg/logger"
	"github.com/gorilla/websocket"
)

// DecoderSnapshot is the JSON payload pushed to subscribers describing one
// decoder's progress, matching viterbi.Snapshot field-for-field plus the
// derived spread and an observation timestamp.
type DecoderSnapshot struct {
	StepsProcessed int64     `json:"steps_processed"`
	Renormals      int64     `json:"renormals"`
	Slot           int       `json:"slot"`
	MinMetric      int64     `json:"min_metric"`
	MaxMetric      int64     `json:"max_metric"`
	Spread         int64     `json:"spread"`
	ObservedAt     time.Time `json:"observed_at"`
}

// SnapshotFeed fans one decoder's progress snapshots out to WebSocket
// subscribers. There is exactly one producer (the StatusServer poll loop)
// and one message kind, so there is no event-type dispatch and no hub
// goroutine: a mutex-guarded subscriber set with per-subscriber send
// buffers is the whole mechanism. A subscriber that cannot keep up has
// snapshots dropped, never queued unboundedly; the next snapshot supersedes
// anything it missed.
type SnapshotFeed struct {
	logger *logger.Logger

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// NewSnapshotFeed creates an empty feed.
func NewSnapshotFeed(log *logger.Logger) *SnapshotFeed {
	return &SnapshotFeed{
		logger: log,
		subs:   make(map[*subscriber]struct{}),
	}
}

// Publish marshals snap once and offers it to every current subscriber.
// Slow subscribers are skipped for this snapshot rather than blocking the
// caller.
func (f *SnapshotFeed) Publish(snap DecoderSnapshot) {
	if snap.ObservedAt.IsZero() {
		snap.ObservedAt = time.Now()
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		f.logger.Error("Failed to marshal decoder snapshot", logger.Err(err))
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs {
		select {
		case sub.send <- payload:
		default:
			f.logger.Debug("Subscriber behind, dropping snapshot")
		}
	}
}

// Handler returns the HTTP handler that upgrades requests to WebSocket
// subscriptions. Subscribers are write-only from the feed's point of view;
// anything they send is read and discarded so pings and close frames are
// still processed.
func (f *SnapshotFeed) Handler() http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			f.logger.Warn("WebSocket upgrade failed", logger.Err(err))
			return
		}

		sub := &subscriber{conn: conn, send: make(chan []byte, 16)}
		if !f.add(sub) {
			_ = conn.Close()
			return
		}
		f.logger.Debug("Snapshot subscriber attached", logger.String("remote", r.RemoteAddr))

		go sub.writePump()
		go func() {
			sub.conn.SetReadLimit(512)
			for {
				if _, _, err := sub.conn.ReadMessage(); err != nil {
					break
				}
			}
			f.remove(sub)
		}()
	})
}

// SubscriberCount returns the number of attached subscribers.
func (f *SnapshotFeed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close detaches every subscriber and rejects future ones. Safe to call
// more than once.
func (f *SnapshotFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for sub := range f.subs {
		close(sub.send)
		delete(f.subs, sub)
	}
}

func (f *SnapshotFeed) add(sub *subscriber) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.subs[sub] = struct{}{}
	return true
}

func (f *SnapshotFeed) remove(sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub]; ok {
		delete(f.subs, sub)
		close(sub.send)
	}
}

// writePump drains the subscriber's send buffer onto the wire, then closes
// the connection once the channel is closed (by remove or Close) or a write
// fails.
func (s *subscriber) writePump() {
	defer func() { _ = s.conn.Close() }()
	for msg := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
