package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestPublishReachesClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Start()
	t.Cleanup(hub.Stop)

	conn := dialHub(t, hub)

	// Registration goes through the hub loop; give it a moment before
	// broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.Publish(PredictionEvent, map[string]float64{"predicted_price": 250000})
		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		if _, payload, err := conn.ReadMessage(); err == nil {
			if !strings.Contains(string(payload), `"prediction"`) {
				t.Fatalf("unexpected event payload: %s", payload)
			}
			return
		}
	}
	t.Fatal("no event received before deadline")
}

func TestHandleWebSocketAfterStop(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.Stop()

	conn := dialHub(t, hub)

	// The handler must drop the connection instead of blocking on a hub
	// loop that no longer runs; the read fails promptly rather than
	// timing out.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected closed connection after hub stop")
	} else if strings.Contains(err.Error(), "timeout") {
		t.Fatalf("connection was left hanging: %v", err)
	}
}
