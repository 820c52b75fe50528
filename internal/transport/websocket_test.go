// SPDX-License-Identifier: MIT
package transport

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketTransportDeliversFrames(t *testing.T) {
	tr, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer tr.Close()

	url := "ws://" + tr.Addr() + "/spectrum"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	// The server registers the client asynchronously after the upgrade.
	deadline := time.Now().Add(2 * time.Second)
	for {
		tr.clientsMu.Lock()
		n := len(tr.clients)
		tr.clientsMu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(time.Millisecond)
	}

	if err := tr.Send(Frame{Seq: 7, Bands: []float64{0.1, 0.5, 0.9}, Overflows: 3}); err != nil {
		t.Fatalf("send: %v", err)
	}

	var got Frame
	conn.SetReadDeadline(deadline)
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read frame: %v", err)
	}

	if got.Seq != 7 || got.Overflows != 3 {
		t.Errorf("got seq=%d overflows=%d, want 7 and 3", got.Seq, got.Overflows)
	}
	if len(got.Bands) != 3 || got.Bands[1] != 0.5 {
		t.Errorf("bands = %v, want [0.1 0.5 0.9]", got.Bands)
	}
}

func TestWebSocketTransportSendCopiesBands(t *testing.T) {
	tr := &WebSocketTransport{frames: make(chan Frame, 1)}

	bands := []float64{1, 2, 3}
	if err := tr.Send(Frame{Seq: 1, Bands: bands}); err != nil {
		t.Fatalf("send: %v", err)
	}
	bands[0] = 99

	f := <-tr.frames
	if f.Bands[0] != 1 {
		t.Errorf("queued frame saw caller mutation: %v", f.Bands)
	}
}

func TestWebSocketTransportCloseIdempotent(t *testing.T) {
	tr, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	// Send after close must not panic or block.
	if err := tr.Send(Frame{Seq: 1}); err != nil {
		t.Fatalf("send after close: %v", err)
	}
}

func TestLoggingTransportNeverFails(t *testing.T) {
	lt := NewLoggingTransport()
	if err := lt.Send(Frame{Seq: 1, Bands: []float64{0.2}}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := lt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
