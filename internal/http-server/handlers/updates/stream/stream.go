// Package stream pushes refresh events to browsers over a websocket.
package stream

import (
	"net/http"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/broadcast"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Subscriber interface {
	Subscribe(buffer int) (*broadcast.Subscription, error)
	Unsubscribe(sub *broadcast.Subscription)
}

func New(log *zap.Logger, subscriber Subscriber, allowedOrigins []string) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.updates.stream.New"
		log := log.With(zap.String("op", op))

		sub, err := subscriber.Subscribe(broadcast.DefaultBuffer)
		if err != nil {
			log.Warn("Subscribe refused", zap.Error(err))
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			subscriber.Unsubscribe(sub)
			log.Info("Websocket upgrade failed", zap.Error(err))
			return
		}

		log.Debug("Update stream opened", zap.String("subscription", sub.ID().String()))

		go readPump(conn, func() { subscriber.Unsubscribe(sub) })
		writePump(conn, sub, log)
	}
}

// readPump only exists to process pongs and notice the peer going away.
func readPump(conn *websocket.Conn, done func()) {
	defer func() {
		done()
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *broadcast.Subscription, log *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.C():
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// broadcaster dropped us or is shutting down
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				log.Error("Failed to encode event", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
