package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ayusman/handlink/internal/action"
)

// feedBuffer is the number of actions queued per client before new ones are
// dropped for that client.
const feedBuffer = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// ActionFeed streams delivered input actions to WebSocket clients.
type ActionFeed struct {
	log     *logrus.Entry
	clients map[*feedClient]struct{}
	mu      sync.RWMutex
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewActionFeed creates an ActionFeed with no clients.
func NewActionFeed(log *logrus.Entry) *ActionFeed {
	return &ActionFeed{
		log:     log,
		clients: make(map[*feedClient]struct{}),
	}
}

// Clients returns the number of connected clients.
func (f *ActionFeed) Clients() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// Publish queues a to every client. It never blocks; a client whose buffer
// is full misses the action.
func (f *ActionFeed) Publish(a action.InputAction) {
	msg, err := json.Marshal(a)
	if err != nil {
		f.log.WithError(err).Warn("encode input action")
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for c := range f.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (f *ActionFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	c := &feedClient{conn: conn, send: make(chan []byte, feedBuffer)}
	f.mu.Lock()
	f.clients[c] = struct{}{}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		delete(f.clients, c)
		f.mu.Unlock()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Keep connection alive by reading messages
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-c.send:
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
