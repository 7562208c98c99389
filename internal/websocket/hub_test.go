package websocket_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomtech-site/backend/internal/websocket"
)

func TestEnqueueDeliversToSendChannel(t *testing.T) {
	hub := websocket.NewHub()
	client := websocket.NewClient(hub)

	require.True(t, client.Enqueue([]byte("hello")))
	select {
	case msg := <-client.Send():
		assert.Equal(t, "hello", string(msg))
	case <-time.After(time.Second):
		t.Fatal("queued message never arrived")
	}
}

func TestEnqueueAfterUnregisterIsSafe(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	client := websocket.NewClient(hub)
	hub.Register(client)
	hub.Unregister(client)

	// The hub closes the client asynchronously; once it has, Enqueue
	// reports false instead of writing to a closed channel.
	require.Eventually(t, func() bool {
		return !client.Enqueue([]byte("late"))
	}, time.Second, 10*time.Millisecond)
}

func TestBroadcastReachesRegisteredClients(t *testing.T) {
	hub := websocket.NewHub()
	go hub.Run()

	client := websocket.NewClient(hub)
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast([]byte("news"))
	select {
	case msg := <-client.Send():
		assert.Equal(t, "news", string(msg))
	case <-time.After(time.Second):
		t.Fatal("broadcast never arrived")
	}
}
