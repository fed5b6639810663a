package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ballotbox/pkg/requestcontext"
)

// Sink persists or forwards audit events.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

const defaultBuffer = 1024

// ErrBufferFull is returned by Emit when the event had to be dropped.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher captures structured audit events without blocking callers.
// Events are buffered and handed to the sink by Run; when the buffer is
// full the event is dropped and Emit reports ErrBufferFull.
type Publisher struct {
	sink   Sink
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(sink Sink, buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Publisher{sink: sink, inbox: make(chan Event, buffer), logger: logger}
}

// Emit enqueues an event, stamping its time and request id from ctx.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Run drains the buffer into the sink until ctx is cancelled, then flushes
// whatever is still queued with a short grace period.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			p.flush()
			return nil
		case event := <-p.inbox:
			p.append(ctx, event)
		}
	}
}

func (p *Publisher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-p.inbox:
			p.append(ctx, event)
		default:
			return
		}
	}
}

func (p *Publisher) append(ctx context.Context, event Event) {
	if err := p.sink.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "failed to append audit event",
			"action", event.Action,
			"error", err,
		)
	}
}
