package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/broadcast"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func newStreamServer(t *testing.T, origins []string) (*broadcast.Broadcaster, string) {
	t.Helper()

	b := broadcast.New(zap.NewNop())
	srv := httptest.NewServer(New(zap.NewNop(), b, origins))
	t.Cleanup(srv.Close)
	t.Cleanup(b.Close)

	return b, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitSubscribers(t *testing.T, b *broadcast.Broadcaster, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for b.Len() != want {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers = %d, want %d", b.Len(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStreamDeliversRefresh(t *testing.T) {
	b, url := newStreamServer(t, []string{"*"})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitSubscribers(t, b, 1)
	b.Publish(broadcast.NewRefresh("booking.created", "test"))

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	kind, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if kind != websocket.TextMessage {
		t.Fatalf("message type = %d", kind)
	}

	var ev broadcast.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		t.Fatalf("decode %s: %v", payload, err)
	}
	if ev.Kind != broadcast.KindRefresh || ev.Reason != "booking.created" {
		t.Errorf("event = %+v", ev)
	}
}

func TestStreamUnsubscribesOnDisconnect(t *testing.T) {
	b, url := newStreamServer(t, []string{"*"})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitSubscribers(t, b, 1)

	_ = conn.Close()
	waitSubscribers(t, b, 0)
}

func TestStreamClosesWhenBroadcasterStops(t *testing.T) {
	b, url := newStreamServer(t, []string{"*"})

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitSubscribers(t, b, 1)

	b.Close()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("deadline: %v", err)
	}
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("read after close = %v, want going away", err)
	}
}

func TestStreamOrigins(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"listed", "https://barbearia.example", true},
		{"no header", "", true},
		{"foreign", "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, url := newStreamServer(t, []string{"https://barbearia.example"})

			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(url, header)
			if tt.ok {
				if err != nil {
					t.Fatalf("dial: %v", err)
				}
				_ = conn.Close()
				return
			}

			if err == nil {
				_ = conn.Close()
				t.Fatal("foreign origin accepted")
			}
			if resp == nil || resp.StatusCode != http.StatusForbidden {
				t.Errorf("response = %v, want 403", resp)
			}
			waitSubscribers(t, b, 0)
		})
	}
}
