package websocket

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.clientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d clients", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestEmitDeliversToConnectedClients(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := &Client{Hub: h, Send: make(chan []byte, 256)}
	h.register <- client
	waitForClients(t, h, 1)

	h.Emit("low_stock_alert", map[string]interface{}{"item_name": "Urea"})

	select {
	case raw := <-client.Send:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, "low_stock_alert", event.Event)
		assert.Equal(t, "Urea", event.Data["item_name"])
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached the client")
	}
}

func TestEmitKeepsEventsDuringRegistrationChurn(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := &Client{Hub: h, Send: make(chan []byte, 256)}
	h.register <- client
	waitForClients(t, h, 1)

	const events = 20
	for i := 0; i < events; i++ {
		// Keep the dispatch loop busy with register traffic between emits.
		extra := &Client{Hub: h, Send: make(chan []byte, 1)}
		h.register <- extra
		h.Emit("stock_request_decided", map[string]interface{}{"id": fmt.Sprintf("%d", i)})
		h.unregister <- extra
	}

	received := 0
	deadline := time.After(2 * time.Second)
	for received < events {
		select {
		case <-client.Send:
			received++
		case <-deadline:
			t.Fatalf("received %d of %d events", received, events)
		}
	}
}

func TestEmitWithoutClientsDoesNotBlock(t *testing.T) {
	h := NewHub()
	go h.Run()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Emit("approval_request_created", map[string]interface{}{"id": fmt.Sprintf("%d", i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit blocked with no clients connected")
	}
}
