// Package notify fans change sets out to subscribers.
//
// Every subscriber receives sets whole and in publish order from its own
// delivery goroutine. A subscriber that falls behind is told to resync
// instead of silently missing sets.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/telemetry"
)

// DefaultQueueSize is the per-subscriber queue length used when none is configured
const DefaultQueueSize = 64

// Handler receives notifications for one subscription.
// Methods are called from a single goroutine, never concurrently.
type Handler interface {
	// OnChangeSet is called for every published set, in Seq order and
	// without gaps until a backpressure signal. A set may be empty when the
	// call that published it changed nothing.
	OnChangeSet(cs domain.ChangeSet)

	// OnBackpressure is called after the subscriber's queue overflowed.
	// Sets published before the call may have been discarded; the
	// subscriber must re-read a full snapshot.
	OnBackpressure()
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are ignored.
type HandlerFuncs struct {
	ChangeSet    func(domain.ChangeSet)
	Backpressure func()
}

func (h HandlerFuncs) OnChangeSet(cs domain.ChangeSet) {
	if h.ChangeSet != nil {
		h.ChangeSet(cs)
	}
}

func (h HandlerFuncs) OnBackpressure() {
	if h.Backpressure != nil {
		h.Backpressure()
	}
}

// Option configures a Notifier
type Option func(*Notifier)

// WithQueueSize sets the per-subscriber queue length
func WithQueueSize(n int) Option {
	return func(nt *Notifier) {
		if n > 0 {
			nt.queueSize = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(nt *Notifier) {
		if logger != nil {
			nt.logger = logger
		}
	}
}

// WithMetrics records publish and overflow counts
func WithMetrics(m *telemetry.NotifyMetrics) Option {
	return func(nt *Notifier) {
		nt.metrics = m
	}
}

// Notifier publishes ordered change sets to subscribers.
type Notifier struct {
	queueSize int
	logger    *slog.Logger
	metrics   *telemetry.NotifyMetrics

	pubMu sync.Mutex // Orders publishes
	seq   uint64

	mu   sync.Mutex // Protects subs only
	subs []*Subscription
}

// New creates a notifier
func New(opts ...Option) *Notifier {
	n := &Notifier{
		queueSize: DefaultQueueSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Subscribe registers h and starts its delivery goroutine
func (n *Notifier) Subscribe(h Handler) *Subscription {
	sub := &Subscription{
		id:       uuid.New(),
		notifier: n,
		handler:  h,
		queue:    make(chan domain.ChangeSet, n.queueSize),
		overflow: make(chan struct{}, 1),
		quit:     make(chan struct{}),
	}

	n.mu.Lock()
	n.subs = append(n.subs, sub)
	n.mu.Unlock()

	n.metrics.RecordSubscribers(context.Background(), 1)
	n.logger.Debug("subscriber added", "subscription", sub.id)

	go sub.deliver()
	return sub
}

// Unsubscribe removes sub. Publishing to it afterwards is a no-op.
// It is safe to call from inside a handler and more than once.
func (n *Notifier) Unsubscribe(sub *Subscription) {
	n.mu.Lock()
	idx := slices.Index(n.subs, sub)
	if idx >= 0 {
		n.subs = slices.Delete(n.subs, idx, idx+1)
	}
	n.mu.Unlock()

	if sub.stop() {
		n.metrics.RecordSubscribers(context.Background(), -1)
		n.logger.Debug("subscriber removed", "subscription", sub.id)
	}
}

// Publish assigns the next sequence number to events and queues the set
// for every current subscriber, empty or not.
func (n *Notifier) Publish(events []domain.ChangeEvent) domain.ChangeSet {
	n.pubMu.Lock()
	defer n.pubMu.Unlock()

	n.seq++
	cs := domain.ChangeSet{Seq: n.seq, Events: slices.Clone(events)}
	n.metrics.RecordPublish(context.Background(), len(cs.Events))

	n.mu.Lock()
	subs := slices.Clone(n.subs)
	n.mu.Unlock()

	for _, sub := range subs {
		if sub.enqueue(cs) {
			n.metrics.RecordBackpressure(context.Background())
			n.logger.Warn("subscriber queue overflowed", "subscription", sub.id, "seq", cs.Seq)
		}
	}
	return cs
}

// Len returns the number of active subscriptions
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Close removes every subscription
func (n *Notifier) Close() {
	n.mu.Lock()
	subs := n.subs
	n.subs = nil
	n.mu.Unlock()

	for _, sub := range subs {
		if sub.stop() {
			n.metrics.RecordSubscribers(context.Background(), -1)
		}
	}
}

// Subscription is one registered handler.
type Subscription struct {
	id       uuid.UUID
	notifier *Notifier
	handler  Handler

	mu         sync.Mutex // Guards sends, overflowed and closed
	queue      chan domain.ChangeSet
	overflow   chan struct{}
	overflowed bool
	closed     bool
	quit       chan struct{}
}

// ID returns the subscription identifier
func (s *Subscription) ID() string {
	return s.id.String()
}

// Close unsubscribes s
func (s *Subscription) Close() {
	s.notifier.Unsubscribe(s)
}

// enqueue queues cs and reports whether this call overflowed the queue
func (s *Subscription) enqueue(cs domain.ChangeSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.overflowed {
		return false
	}

	select {
	case s.queue <- cs:
		return false
	default:
	}

	s.overflowed = true
	select {
	case s.overflow <- struct{}{}:
	default:
	}
	return true
}

// stop marks s closed and ends delivery; it reports whether s was open
func (s *Subscription) stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	close(s.quit)
	return true
}

func (s *Subscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscription) deliver() {
	for {
		select {
		case <-s.quit:
			return
		case <-s.overflow:
			s.resetOverflow()
			if s.isClosed() {
				return
			}
			s.handler.OnBackpressure()
		case cs := <-s.queue:
			if s.isClosed() {
				return
			}
			s.handler.OnChangeSet(cs)
		}
	}
}

// resetOverflow discards superseded sets and reopens the queue
func (s *Subscription) resetOverflow() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		select {
		case <-s.queue:
		default:
			s.overflowed = false
			return
		}
	}
}
