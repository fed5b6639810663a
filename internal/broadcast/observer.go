package broadcast

import (
	"sync"

	"ballotbox/internal/candidates/models"
)

type offerResult int

const (
	offerQueued offerResult = iota
	offerCoalesced
	offerStale
	offerClosed
)

// observer owns one connection. Snapshots land in a one-slot mailbox that a
// dedicated writer drains, so a slow connection only ever delays itself.
// Revisions entering the mailbox are strictly increasing, which keeps what
// the connection sees monotonic.
type observer struct {
	conn Conn

	mu        sync.Mutex
	pending   *models.Snapshot
	lastRev   int64
	hasQueued bool
	closed    bool

	wake chan struct{}
	done chan struct{}
}

func newObserver(conn Conn) *observer {
	return &observer{
		conn: conn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (o *observer) offer(snap models.Snapshot) offerResult {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return offerClosed
	}
	if o.hasQueued && snap.Revision <= o.lastRev {
		o.mu.Unlock()
		return offerStale
	}
	result := offerQueued
	if o.pending != nil {
		result = offerCoalesced
	}
	o.pending = &snap
	o.lastRev = snap.Revision
	o.hasQueued = true
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return result
}

func (o *observer) take() *models.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap := o.pending
	o.pending = nil
	return snap
}

// run writes mailbox contents until the observer is closed or a send fails.
func (o *observer) run(onDelivered func(), onFailure func(error)) {
	for {
		select {
		case <-o.done:
			return
		case <-o.wake:
		}
		snap := o.take()
		if snap == nil {
			continue
		}
		if err := o.conn.Send(NewMessage(*snap)); err != nil {
			onFailure(err)
			return
		}
		onDelivered()
	}
}

// close stops the writer; it is safe to call more than once.
func (o *observer) close() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	o.closed = true
	o.pending = nil
	close(o.done)
	return true
}
