package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/broadcast"
	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/metrics"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var errSubscriptionClosed = errors.New("update subscription closed")

// MessageSender is the part of *bot.Bot the notifier needs.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type EventSource interface {
	Subscribe(buffer int) (*broadcast.Subscription, error)
	Unsubscribe(sub *broadcast.Subscription)
}

type NotifierConfig struct {
	Chats []int64
	// Rate is messages per second, Burst the bucket size.
	Rate  float64
	Burst int

	FailureThreshold uint32
	OpenTimeout      time.Duration
}

var reasonLabels = map[string]string{
	"booking.created":     "novo agendamento",
	"booking.updated":     "agendamento alterado",
	"booking.cancelled":   "agendamento cancelado",
	"booking.rescheduled": "agendamento reagendado",
	"bookings.completed":  "atendimentos concluídos",
	"slots.reset":         "grade reiniciada",
	"slots.bulk":          "disponibilidade alterada",
	"slots.time_added":    "horário adicionado",
	"slots.time_removed":  "horário removido",
	"slots.upserted":      "horário alterado",
	"slots.removed":       "horário removido",
	"settings.updated":    "horário de funcionamento alterado",
}

// Notifier forwards refresh events to the admin chats. Events over the rate
// are folded into the next message that goes out.
type Notifier struct {
	source  EventSource
	sender  MessageSender
	chats   []int64
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*models.Message]
	logger  *zap.Logger

	suppressed int
}

func NewNotifier(source EventSource, sender MessageSender, cfg NotifierConfig, logger *zap.Logger) *Notifier {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}

	n := &Notifier{
		source:  source,
		sender:  sender,
		chats:   cfg.Chats,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		logger:  logger.Named("notifier"),
	}

	n.breaker = gobreaker.NewCircuitBreaker[*models.Message](gobreaker.Settings{
		Name:        "telegram",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			n.logger.Warn("Circuit breaker state changed",
				zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return n
}

func (n *Notifier) Serve(ctx context.Context) error {
	sub, err := n.source.Subscribe(broadcast.DefaultBuffer)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer n.source.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.C():
			if !ok {
				// Dropped for falling behind; the supervisor restarts us.
				return errSubscriptionClosed
			}
			n.handle(ctx, ev)
		}
	}
}

func (n *Notifier) String() string {
	return "telegram-notifier"
}

func (n *Notifier) handle(ctx context.Context, ev broadcast.Event) {
	if len(n.chats) == 0 {
		return
	}
	if !n.limiter.Allow() {
		n.suppressed++
		metrics.TelegramNotifications.WithLabelValues("throttled").Inc()
		return
	}

	text := formatEvent(ev, n.suppressed)
	n.suppressed = 0

	for _, chatID := range n.chats {
		n.send(ctx, chatID, text)
	}
}

func (n *Notifier) send(ctx context.Context, chatID int64, text string) {
	_, err := n.breaker.Execute(func() (*models.Message, error) {
		return n.sender.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	})

	switch {
	case err == nil:
		metrics.TelegramNotifications.WithLabelValues("sent").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.TelegramNotifications.WithLabelValues("circuit_open").Inc()
	default:
		metrics.TelegramNotifications.WithLabelValues("failed").Inc()
		n.logger.Warn("Failed to notify admin chat", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func formatEvent(ev broadcast.Event, suppressed int) string {
	label, ok := reasonLabels[ev.Reason]
	if !ok {
		label = ev.Reason
	}
	text := "Agenda atualizada: " + label
	if suppressed > 0 {
		text += fmt.Sprintf(" (+%d alterações)", suppressed)
	}
	return text
}
