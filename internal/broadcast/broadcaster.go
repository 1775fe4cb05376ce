// Package broadcast fans refresh events out to live subscribers.
//
// The registry is copy-on-write: Subscribe and removal rebuild the slice under
// a writer mutex, Publish iterates an atomically loaded snapshot. Each handle
// guards its own channel so a concurrent removal never races a send.
package broadcast

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/EllyanL/CCA-BR-BarbeariaGAP-sub000/internal/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const DefaultBuffer = 16

var ErrClosed = errors.New("broadcaster closed")

type Kind string

const KindRefresh Kind = "refresh"

// Event is a coarse signal telling viewers to re-fetch.
type Event struct {
	ID     uuid.UUID `json:"id"`
	Kind   Kind      `json:"kind"`
	Reason string    `json:"reason"`
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

func NewRefresh(reason, origin string) Event {
	return Event{
		ID:     uuid.New(),
		Kind:   KindRefresh,
		Reason: reason,
		Origin: origin,
		At:     time.Now().UTC(),
	}
}

// Subscription is one live handle. Read events from C.
type Subscription struct {
	id uuid.UUID
	ch chan Event

	mu     sync.RWMutex
	closed bool
}

func (s *Subscription) ID() uuid.UUID {
	return s.id
}

func (s *Subscription) C() <-chan Event {
	return s.ch
}

// push never blocks; false means the handle is closed or full.
func (s *Subscription) push(e Event) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- e:
		return true
	default:
		return false
	}
}

func (s *Subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

type Broadcaster struct {
	mu     sync.Mutex
	subs   atomic.Pointer[[]*Subscription]
	closed atomic.Bool
	logger *zap.Logger
}

func New(logger *zap.Logger) *Broadcaster {
	b := &Broadcaster{logger: logger}
	empty := make([]*Subscription, 0)
	b.subs.Store(&empty)
	return b
}

// Subscribe registers a handle with no expiry.
func (b *Broadcaster) Subscribe(buffer int) (*Subscription, error) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &Subscription{id: uuid.New(), ch: make(chan Event, buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed.Load() {
		return nil, ErrClosed
	}

	current := *b.subs.Load()
	next := make([]*Subscription, len(current), len(current)+1)
	copy(next, current)
	next = append(next, sub)
	b.subs.Store(&next)
	metrics.BroadcastSubscribers.Set(float64(len(next)))

	return sub, nil
}

// Unsubscribe removes and closes the handle. Safe to call twice.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.remove([]*Subscription{sub})
}

// Publish pushes e to every handle and drops the ones that fail.
// It returns the number of handles that received the event.
func (b *Broadcaster) Publish(e Event) int {
	if b.closed.Load() {
		return 0
	}
	metrics.BroadcastEvents.Inc()

	var (
		delivered int
		failed    []*Subscription
	)
	for _, sub := range *b.subs.Load() {
		if sub.push(e) {
			delivered++
			continue
		}
		failed = append(failed, sub)
	}

	if len(failed) > 0 {
		removed := b.remove(failed)
		metrics.BroadcastDropped.Add(float64(removed))
		b.logger.Debug("Dropped unresponsive subscribers", zap.Int("count", removed))
	}

	return delivered
}

func (b *Broadcaster) Len() int {
	return len(*b.subs.Load())
}

// Close removes every handle; later Subscribe calls fail.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed.Swap(true) {
		return
	}

	for _, sub := range *b.subs.Load() {
		sub.close()
	}
	empty := make([]*Subscription, 0)
	b.subs.Store(&empty)
	metrics.BroadcastSubscribers.Set(0)
}

func (b *Broadcaster) remove(targets []*Subscription) int {
	drop := make(map[*Subscription]struct{}, len(targets))
	for _, t := range targets {
		drop[t] = struct{}{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := *b.subs.Load()
	next := make([]*Subscription, 0, len(current))
	removed := 0
	for _, sub := range current {
		if _, ok := drop[sub]; ok {
			sub.close()
			removed++
			continue
		}
		next = append(next, sub)
	}
	// Handles already gone from the registry still need closing.
	for _, t := range targets {
		t.close()
	}

	b.subs.Store(&next)
	metrics.BroadcastSubscribers.Set(float64(len(next)))
	return removed
}
