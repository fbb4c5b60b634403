package lcu

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// EventType represents LCU WebSocket (WAMP) message types
type EventType int

const (
	EventTypeSubscribe   EventType = 5
	EventTypeUnsubscribe EventType = 6
	EventTypeEvent       EventType = 8
)

// Events the watcher subscribes to
const (
	EventChampSelectSession = "OnJsonApiEvent_lol-champ-select_v1_session"
	EventGameflowPhase      = "OnJsonApiEvent_lol-gameflow_v1_gameflow-phase"
)

// Watcher listens on the LCU WebSocket and signals Wake whenever champion
// select or the gameflow phase changes, so a poller can refresh right away
// instead of waiting out its sleep.
type Watcher struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	port      uint16
	connected bool
	events    []string
	wake      chan struct{}
	dialer    websocket.Dialer
}

// NewWatcher creates a watcher for the champion select and gameflow events
func NewWatcher() *Watcher {
	return &Watcher{
		events: []string{EventChampSelectSession, EventGameflowPhase},
		wake:   make(chan struct{}, 1),
		dialer: websocket.Dialer{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
			HandshakeTimeout: 3 * time.Second,
		},
	}
}

// Wake fires (coalesced) after each subscribed event
func (w *Watcher) Wake() <-chan struct{} {
	return w.wake
}

// IsConnected returns whether the WebSocket is connected
func (w *Watcher) IsConnected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.connected
}

// Ensure connects for cred unless already connected to the same port.
// A changed port means the client restarted, so the old socket is dropped.
func (w *Watcher) Ensure(cred *Credential) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.connected && w.port == cred.Port {
		return nil
	}
	w.closeLocked()

	url := fmt.Sprintf("wss://127.0.0.1:%d/", cred.Port)
	header := http.Header{}
	header.Set("Authorization", BasicAuth(cred.Password))

	conn, _, err := w.dialer.Dial(url, header)
	if err != nil {
		return fmt.Errorf("failed to connect to LCU WebSocket: %w", err)
	}

	for _, event := range w.events {
		if err := conn.WriteJSON([]any{EventTypeSubscribe, event}); err != nil {
			conn.Close()
			return fmt.Errorf("failed to subscribe to %s: %w", event, err)
		}
	}

	w.conn = conn
	w.port = cred.Port
	w.connected = true
	go w.listen(conn)

	log.Printf("[LCU] WebSocket connected on port %d", cred.Port)
	return nil
}

// listen reads messages until the connection drops
func (w *Watcher) listen(conn *websocket.Conn) {
	defer func() {
		w.mu.Lock()
		if w.conn == conn {
			w.connected = false
			w.conn = nil
		}
		w.mu.Unlock()
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if w.isSubscribedEvent(message) {
			w.notify()
		}
	}
}

// isSubscribedEvent reports whether a raw [type, name, payload] frame is an
// event we subscribed to
func (w *Watcher) isSubscribedEvent(data []byte) bool {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) < 2 {
		return false
	}

	var eventType EventType
	if err := json.Unmarshal(raw[0], &eventType); err != nil || eventType != EventTypeEvent {
		return false
	}

	var name string
	if err := json.Unmarshal(raw[1], &name); err != nil {
		return false
	}
	for _, event := range w.events {
		if event == name {
			return true
		}
	}
	return false
}

func (w *Watcher) notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Close disconnects the WebSocket
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeLocked()
}

func (w *Watcher) closeLocked() {
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}
