package ws

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/protocol"
)

// Broadcaster serializes game state and events and fans them out to every
// open connection in the registry
type Broadcaster struct {
	registry *Registry
	mirror   *MirrorQueue
	logger   *slog.Logger
}

// NewBroadcaster creates a Broadcaster. mirror may be nil.
func NewBroadcaster(registry *Registry, mirror *MirrorQueue, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		mirror:   mirror,
		logger:   logger.With(slog.String("component", "ws-broadcaster")),
	}
}

// BroadcastState sends the full roster to every open connection
func (b *Broadcaster) BroadcastState(ctx context.Context, players []*model.Player) {
	data, err := protocol.EncodeState(players)
	if err != nil {
		b.logger.Error("failed to encode state", slog.String("error", err.Error()))
		return
	}

	b.publish(Frame{Kind: KindState, Data: data})
}

// BroadcastEvent sends a hit event to every open connection
func (b *Broadcaster) BroadcastEvent(ctx context.Context, event model.HitEvent) {
	data, err := protocol.EncodeHit(event)
	if err != nil {
		b.logger.Error("failed to encode event",
			slog.String("event", string(event.Type())),
			slog.String("error", err.Error()))
		return
	}

	b.publish(Frame{Kind: KindEvent, Data: data})
}

// publish never waits on the mirror; callers hold the game lock
func (b *Broadcaster) publish(frame Frame) {
	b.fanOut(frame)
	if b.mirror != nil {
		b.mirror.Push(frame)
	}
}

// fanOut queues the frame on every open connection. A failure on one
// connection never stops delivery to the rest.
func (b *Broadcaster) fanOut(frame Frame) {
	sent, failed := 0, 0
	b.registry.ForEachOpen(func(conn Conn) {
		err := conn.Send(frame)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, model.ErrConnectionClosed):
			// Closed between the open check and the send; its close handler cleans up
		default:
			failed++
			b.logger.Warn("failed to queue frame",
				slog.String("conn_id", string(conn.ID())),
				slog.String("kind", frame.Kind.String()),
				slog.String("error", err.Error()))
		}
	})

	if failed > 0 {
		b.logger.Warn("broadcast partial failure",
			slog.Int("sent", sent),
			slog.Int("failed", failed))
	}
}
