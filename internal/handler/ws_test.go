package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignBridge/internal/pipeline"
)

func TestHubRoutesEventsByUser(t *testing.T) {
	hub := NewHub()
	alice := &wsClient{userID: "alice", send: make(chan pipeline.Event, 4)}
	bob := &wsClient{userID: "bob", send: make(chan pipeline.Event, 4)}
	hub.register(alice)
	hub.register(bob)

	hub.Publish(pipeline.Event{Type: pipeline.EventNotice, UserID: "alice", Detail: "coucou"})
	assert.Len(t, alice.send, 1)
	assert.Empty(t, bob.send)

	// events without a user fan out to everyone
	hub.Publish(pipeline.Event{Type: pipeline.EventCycle})
	assert.Len(t, alice.send, 2)
	assert.Len(t, bob.send, 1)
}

func TestHubPublishNeverBlocksOnSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &wsClient{userID: "slow", send: make(chan pipeline.Event, 1)}
	hub.register(slow)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(pipeline.Event{Type: pipeline.EventStage, UserID: "slow"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full client buffer")
	}
}

func TestEventStreamOverWebSocket(t *testing.T) {
	srv, h := newTestServer(t)
	cookie := signUp(t, srv, "judy@example.com")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/events"
	header := http.Header{"Cookie": []string{cookie}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer conn.Close()

	// wait for the connection to land in the hub before publishing
	require.Eventually(t, func() bool { return h.hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	session := doJSON(t, http.MethodGet, srv.URL+"/api/auth/session", cookie, nil)
	data := decodeBody(t, session)["data"].(map[string]any)
	userID := data["ID"].(string)

	h.hub.Publish(pipeline.Event{Type: pipeline.EventNotice, UserID: userID, Detail: "bonjour"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got pipeline.Event
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, pipeline.EventNotice, got.Type)
	assert.Equal(t, "bonjour", got.Detail)
}
