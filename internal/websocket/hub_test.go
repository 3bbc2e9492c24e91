package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// countingStub records every client-count update pushed by the hub.
type countingStub struct {
	counts chan int
}

func (s *countingStub) SetWebSocketClients(n int) {
	s.counts <- n
}

func newHubClient(h *Hub) *Client {
	return &Client{
		hub:           h,
		send:          make(chan []byte, 1),
		id:            generateClientID(),
		subscriptions: make(map[string]bool),
	}
}

func TestHubReportsClientCount(t *testing.T) {
	stub := &countingStub{counts: make(chan int, 4)}
	hub := NewHub(stub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	first := newHubClient(hub)
	second := newHubClient(hub)

	hub.register <- first
	require.Equal(t, 1, waitCount(t, stub))

	hub.register <- second
	require.Equal(t, 2, waitCount(t, stub))

	hub.unregister <- first
	require.Equal(t, 1, waitCount(t, stub))

	hub.unregister <- second
	require.Equal(t, 0, waitCount(t, stub))
}

func TestHubNilCounter(t *testing.T) {
	hub := NewHub(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := newHubClient(hub)
	hub.register <- client
	hub.unregister <- client

	// Drain completed without a counter; a second unregister of the same
	// client is ignored.
	hub.unregister <- client
}

func waitCount(t *testing.T, stub *countingStub) int {
	t.Helper()
	select {
	case n := <-stub.counts:
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for client count update")
		return -1
	}
}
