package ws

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arcadeline/backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBroadcastDropsWhenFull(t *testing.T) {
	m := metrics.New("test")
	hub := NewHub(m)
	sub := hub.Subscribe()

	for i := 0; i < bufferSize+3; i++ {
		hub.Broadcast()
	}
	if len(sub.C) != bufferSize {
		t.Fatalf("expected a full buffer of %d, got %d", bufferSize, len(sub.C))
	}
	if got := testutil.ToFloat64(m.DroppedPings); got != 3 {
		t.Fatalf("expected 3 dropped pings, got %v", got)
	}
	if msg := <-sub.C; msg != RefreshMessage {
		t.Fatalf("unexpected payload %q", msg)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe()
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	if _, ok := <-sub.C; ok {
		t.Fatal("expected the channel to be closed")
	}
	if hub.Count() != 0 {
		t.Fatalf("expected no subscribers, got %d", hub.Count())
	}
	hub.Broadcast()
}

func waitForSubscribers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, have %d", n, hub.Count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServeWS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	r := gin.New()
	r.GET("/ws", ServeWS(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, first, err := conn.ReadMessage()
	if err != nil || string(first) != RefreshMessage {
		t.Fatalf("expected an initial refresh, got %q %v", first, err)
	}

	waitForSubscribers(t, hub, 1)
	hub.Broadcast()
	_, msg, err := conn.ReadMessage()
	if err != nil || string(msg) != RefreshMessage {
		t.Fatalf("expected a broadcast refresh, got %q %v", msg, err)
	}

	conn.Close()
	waitForSubscribers(t, hub, 0)
}

func TestServeSSE(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub(nil)
	r := gin.New()
	r.GET("/events", ServeSSE(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("stream ended early: %v", err)
			}
			if strings.HasPrefix(line, "data:") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			}
		}
	}

	if got := readData(); got != RefreshMessage {
		t.Fatalf("expected an initial refresh, got %q", got)
	}
	waitForSubscribers(t, hub, 1)
	hub.Broadcast()
	if got := readData(); got != RefreshMessage {
		t.Fatalf("expected a broadcast refresh, got %q", got)
	}
}
