package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func dialClient(t *testing.T, hub *Hub, customerID, deviceID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		client := NewClient(hub, conn, customerID, deviceID)
		go client.Start()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnection(t *testing.T, hub *Hub, customerID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ConnectionCount(customerID) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d connections for %s, got %d", want, customerID, hub.ConnectionCount(customerID))
}

func TestHubDeliversEventToCustomerDevices(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialClient(t, hub, "cus_1", "dev_1")
	waitForConnection(t, hub, "cus_1", 1)

	hub.Publish(Event{
		Type:        EventDeviceLinked,
		CustomerID:  "cus_1",
		DeviceID:    "dev_2",
		DisplayName: "Safari on iPhone",
		At:          time.Now().UTC(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, EventDeviceLinked, ev.Type)
	assert.Equal(t, "dev_2", ev.DeviceID)
	assert.Equal(t, "Safari on iPhone", ev.DisplayName)
}

func TestHubScopesEventsByCustomer(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	other := dialClient(t, hub, "cus_other", "dev_9")
	waitForConnection(t, hub, "cus_other", 1)

	hub.Publish(Event{Type: EventDeviceUnlinked, CustomerID: "cus_1", DeviceID: "dev_1"})

	other.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "another customer's connection must not receive the event")
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub(zap.NewNop())
	// Hub not running: the buffered channel absorbs events, overflow drops.
	for i := 0; i < 1000; i++ {
		hub.Publish(Event{Type: EventDeviceLinked, CustomerID: "cus_1"})
	}
}
