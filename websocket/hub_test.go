package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID string) *Client {
	return &Client{Hub: hub, UserID: userID, Send: make(chan []byte, 8)}
}

func TestSendToThreadSkipsSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sender := newTestClient(hub, "sender")
	reader := newTestClient(hub, "reader")
	outsider := newTestClient(hub, "outsider")
	hub.Register <- sender
	hub.Register <- reader
	hub.Register <- outsider

	// Registration is async; wait until both are visible
	require.Eventually(t, func() bool {
		return hub.IsUserConnected("sender") && hub.IsUserConnected("reader")
	}, time.Second, 5*time.Millisecond)

	hub.SubscribeToThread("sender", "hazard-1")
	hub.SubscribeToThread("reader", "hazard-1")

	hub.SendToThread("hazard-1", &Message{
		Type:      "message",
		HazardID:  "hazard-1",
		SenderID:  "sender",
		Content:   "anyone there?",
		Timestamp: time.Now(),
	}, "sender")

	select {
	case data := <-reader.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "anyone there?", msg.Content)
		assert.Equal(t, "hazard-1", msg.HazardID)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the message")
	}

	assert.Empty(t, sender.Send, "sender must not receive its own message")
	assert.Empty(t, outsider.Send, "non-subscribers must not receive thread messages")
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient(hub, "a")
	b := newTestClient(hub, "b")
	hub.Register <- a
	hub.Register <- b
	require.Eventually(t, func() bool {
		return hub.IsUserConnected("a") && hub.IsUserConnected("b")
	}, time.Second, 5*time.Millisecond)

	hub.Broadcast <- &Message{Type: "urgent_hazard", Content: "Gas smell in the east wing"}

	for _, client := range []*Client{a, b} {
		select {
		case data := <-client.Send:
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			assert.Equal(t, "urgent_hazard", msg.Type)
			assert.Equal(t, "Gas smell in the east wing", msg.Content)
		case <-time.After(time.Second):
			t.Fatalf("client %s never received the broadcast", client.UserID)
		}
	}
}

func TestSendMessageReportsFullBuffer(t *testing.T) {
	client := &Client{UserID: "x", Send: make(chan []byte, 1)}

	require.NoError(t, client.SendMessage(&Message{Type: "subscribed"}))
	assert.ErrorIs(t, client.SendMessage(&Message{Type: "subscribed"}), ErrClientBufferFull)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	reader := newTestClient(hub, "reader")
	hub.Register <- reader
	require.Eventually(t, func() bool {
		return hub.IsUserConnected("reader")
	}, time.Second, 5*time.Millisecond)

	hub.SubscribeToThread("reader", "hazard-1")
	hub.UnsubscribeFromThread("reader", "hazard-1")

	hub.SendToThread("hazard-1", &Message{Type: "message", Content: "hi"}, "someone-else")
	assert.Empty(t, reader.Send)
}
