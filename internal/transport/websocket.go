// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"spectrum/internal/log"
)

// WebSocketTransport serves spectrum frames as JSON over a WebSocket
// endpoint at /spectrum. Frames are queued on a bounded channel and
// dropped when the queue is full, so a stalled client never backs up
// the frame loop.
type WebSocketTransport struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	frames    chan Frame
	listener  net.Listener
	server    *http.Server
	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocketTransport binds addr and begins accepting WebSocket
// clients on /spectrum immediately.
func NewWebSocketTransport(addr string) (*WebSocketTransport, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	t := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients:  make(map[*websocket.Conn]bool),
		frames:   make(chan Frame, 64),
		listener: ln,
		done:     make(chan struct{}),
	}
	t.start()
	return t, nil
}

// Addr reports the bound listen address.
func (t *WebSocketTransport) Addr() string {
	return t.listener.Addr().String()
}

func (t *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/spectrum", t.handleClient)

	t.server = &http.Server{Handler: mux}

	go func() {
		log.Infof("transport: websocket listening on %s", t.Addr())
		if err := t.server.Serve(t.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("transport: websocket server: %v", err)
		}
	}()

	go t.pump()
}

func (t *WebSocketTransport) handleClient(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("transport: upgrade failed: %v", err)
		return
	}

	t.clientsMu.Lock()
	t.clients[conn] = true
	n := len(t.clients)
	t.clientsMu.Unlock()
	log.Infof("transport: client connected (%d active)", n)

	// Reads are only needed to observe the close handshake.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		t.drop(conn)
	}()
}

func (t *WebSocketTransport) drop(conn *websocket.Conn) {
	t.clientsMu.Lock()
	if _, ok := t.clients[conn]; ok {
		delete(t.clients, conn)
		log.Infof("transport: client disconnected (%d active)", len(t.clients))
	}
	t.clientsMu.Unlock()
	conn.Close()
}

func (t *WebSocketTransport) pump() {
	for {
		select {
		case f := <-t.frames:
			t.clientsMu.Lock()
			for conn := range t.clients {
				if err := conn.WriteJSON(f); err != nil {
					log.Debugf("transport: write failed: %v", err)
					delete(t.clients, conn)
					conn.Close()
				}
			}
			t.clientsMu.Unlock()
		case <-t.done:
			return
		}
	}
}

// Send queues a frame for broadcast. The frame is dropped when the
// queue is full. The bands slice is copied so the caller may reuse it.
func (t *WebSocketTransport) Send(f Frame) error {
	bands := make([]float64, len(f.Bands))
	copy(bands, f.Bands)
	f.Bands = bands

	select {
	case t.frames <- f:
	default:
	}
	return nil
}

// Close disconnects all clients and shuts down the HTTP server.
func (t *WebSocketTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.done)

		t.clientsMu.Lock()
		for conn := range t.clients {
			conn.Close()
		}
		t.clients = make(map[*websocket.Conn]bool)
		t.clientsMu.Unlock()

		if t.server != nil {
			err = t.server.Close()
		}
	})
	return err
}

var _ Transport = (*WebSocketTransport)(nil)
