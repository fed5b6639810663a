// Package relay carries registry snapshots between server instances over
// Redis Pub/Sub so every instance's observers see every mutation.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"ballotbox/internal/candidates/models"
)

// DefaultChannel is the Pub/Sub channel used when none is configured.
const DefaultChannel = "ballotbox:registry"

// LocalPublisher is the in-process fan-out, normally a *broadcast.Hub.
type LocalPublisher interface {
	Publish(ctx context.Context, snap models.Snapshot) error
}

// Redis publishes snapshots to a channel and feeds received ones to the
// local hub.
type Redis struct {
	client  redis.UniversalClient
	channel string
	local   LocalPublisher
	logger  *slog.Logger
}

func NewRedis(client redis.UniversalClient, channel string, local LocalPublisher, logger *slog.Logger) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{client: client, channel: channel, local: local, logger: logger}
}

// Publish sends snap to every instance, this one included via Run. When Redis
// rejects the message the snapshot is still delivered locally.
func (r *Redis) Publish(ctx context.Context, snap models.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return errors.Join(fmt.Errorf("publish snapshot: %w", err), r.local.Publish(ctx, snap))
	}
	return nil
}

// Run subscribes to the channel and forwards snapshots until ctx ends.
// ready, when non-nil, is closed once the subscription is confirmed.
func (r *Redis) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var snap models.Snapshot
			if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
				r.logger.WarnContext(ctx, "discarding malformed registry snapshot", "error", err)
				continue
			}
			if err := r.local.Publish(ctx, snap); err != nil {
				r.logger.WarnContext(ctx, "failed to deliver relayed snapshot",
					"revision", snap.Revision,
					"error", err,
				)
			}
		}
	}
}
