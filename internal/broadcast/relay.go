package broadcast

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "barbearia:updates"

// Publisher delivers refresh events to local subscribers and, when a relay
// is attached, to the other instances.
type Publisher struct {
	local  *Broadcaster
	relay  *Relay
	origin string
	logger *zap.Logger
}

func NewPublisher(local *Broadcaster, relay *Relay, origin string, logger *zap.Logger) *Publisher {
	return &Publisher{local: local, relay: relay, origin: origin, logger: logger}
}

// PublishRefresh never fails the caller; relay errors are logged.
func (p *Publisher) PublishRefresh(ctx context.Context, reason string) {
	event := NewRefresh(reason, p.origin)
	p.local.Publish(event)

	if p.relay == nil {
		return
	}
	if err := p.relay.Send(ctx, event); err != nil {
		p.logger.Warn("Failed to relay refresh event", zap.String("reason", reason), zap.Error(err))
	}
}

// Relay mirrors events over Redis pub/sub between instances.
type Relay struct {
	client  *redis.Client
	channel string
	origin  string
	local   *Broadcaster
	logger  *zap.Logger
}

func NewRelay(client *redis.Client, channel, origin string, local *Broadcaster, logger *zap.Logger) *Relay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Relay{client: client, channel: channel, origin: origin, local: local, logger: logger}
}

func (r *Relay) Send(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Serve republishes events from peers until ctx is done.
func (r *Relay) Serve(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.logger.Info("Relay subscribed", zap.String("channel", r.channel))

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("relay channel %s closed", r.channel)
			}
			r.handle(msg.Payload)
		}
	}
}

func (r *Relay) handle(payload string) {
	var event Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		r.logger.Warn("Discarding malformed relay payload", zap.Error(err))
		return
	}
	if event.Origin == r.origin {
		return
	}
	r.local.Publish(event)
}

func (r *Relay) String() string {
	return "update-relay"
}
