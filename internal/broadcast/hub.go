package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"ballotbox/internal/candidates/models"
	"ballotbox/internal/platform/metrics"
)

// Conn is one observer's push channel.
type Conn interface {
	Send(msg Message) error
	Close() error
}

// SnapshotSource supplies the current roster for new subscribers.
type SnapshotSource interface {
	List(ctx context.Context) (*models.Snapshot, error)
}

// SourceFunc adapts a function to SnapshotSource.
type SourceFunc func(ctx context.Context) (*models.Snapshot, error)

func (f SourceFunc) List(ctx context.Context) (*models.Snapshot, error) {
	return f(ctx)
}

// Hub fans registry snapshots out to every subscribed observer.
type Hub struct {
	source  SnapshotSource
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	observers map[Conn]*observer
}

type Option func(h *Hub)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) {
		h.metrics = m
	}
}

func NewHub(source SnapshotSource, opts ...Option) *Hub {
	h := &Hub{
		source:    source,
		logger:    slog.Default(),
		observers: make(map[Conn]*observer),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers conn and queues the current roster for it. The observer
// is registered before the roster is read, so a concurrent publication is
// never missed; the revision filter discards whichever of the two is older.
func (h *Hub) Subscribe(ctx context.Context, conn Conn) error {
	o := newObserver(conn)
	h.mu.Lock()
	h.observers[conn] = o
	h.mu.Unlock()
	h.metrics.ObserverAdded()

	go o.run(h.metrics.IncrementDelivered, func(err error) {
		h.logger.Info("dropping observer after failed send", "error", err)
		h.Unsubscribe(conn)
	})

	snap, err := h.source.List(ctx)
	if err != nil {
		h.Unsubscribe(conn)
		return err
	}
	h.deliver(o, *snap)
	return nil
}

// Unsubscribe removes conn and closes it. Unknown connections are ignored.
func (h *Hub) Unsubscribe(conn Conn) {
	h.mu.Lock()
	o, ok := h.observers[conn]
	delete(h.observers, conn)
	h.mu.Unlock()
	if !ok {
		return
	}
	if o.close() {
		h.metrics.ObserverRemoved()
	}
	_ = conn.Close()
}

// Publish hands snap to every observer. It never blocks on a connection.
func (h *Hub) Publish(_ context.Context, snap models.Snapshot) error {
	for _, o := range h.snapshotObservers() {
		h.deliver(o, snap)
	}
	return nil
}

// Len reports the number of subscribed observers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// Close unsubscribes every observer.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]Conn, 0, len(h.observers))
	for conn := range h.observers {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	for _, conn := range conns {
		h.Unsubscribe(conn)
	}
}

// snapshotObservers copies the observer set so iteration is unaffected by
// concurrent subscribe or unsubscribe calls.
func (h *Hub) snapshotObservers() []*observer {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*observer, 0, len(h.observers))
	for _, o := range h.observers {
		out = append(out, o)
	}
	return out
}

func (h *Hub) deliver(o *observer, snap models.Snapshot) {
	switch o.offer(snap) {
	case offerCoalesced:
		h.metrics.IncrementDropped("coalesced")
	case offerStale:
		h.metrics.IncrementDropped("stale")
	}
}
