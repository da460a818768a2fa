package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/geoshooter/internal/dependencies/clock"
	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/storage"
)

// MirrorQueueConfig holds the settings for delivering frames to a mirror
type MirrorQueueConfig struct {
	// Soft capacity of the queue; state frames are dropped beyond it and
	// events beyond twice it
	Capacity int
	// Time allowed for a single mirror call
	Timeout time.Duration
	// Interval between Touch calls; zero disables them
	KeepAlive time.Duration
}

// DefaultMirrorQueueConfig returns settings for a mirror whose state
// expires after ttl
func DefaultMirrorQueueConfig(ttl time.Duration) MirrorQueueConfig {
	return MirrorQueueConfig{
		Capacity:  64,
		Timeout:   2 * time.Second,
		KeepAlive: ttl / 2,
	}
}

// MirrorQueue hands frames to a storage.Mirror from its own goroutine, so a
// slow or unreachable mirror never holds up a broadcast. It queues the same
// way a connection's outbox does, except that events past the hard cap are
// discarded instead of failing the producer.
type MirrorQueue struct {
	mirror storage.Mirror
	outbox *Outbox
	cfg    MirrorQueueConfig
	logger *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
	stopped   chan struct{}
}

// NewMirrorQueue starts delivering to mirror. Close stops it.
func NewMirrorQueue(mirror storage.Mirror, cfg MirrorQueueConfig, clk clock.Clock, logger *slog.Logger) *MirrorQueue {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	q := &MirrorQueue{
		mirror:  mirror,
		outbox:  NewOutbox(cfg.Capacity),
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "ws-mirror")),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	q.cfg.Capacity = q.outbox.capacity

	var ticks <-chan time.Time
	stopTicker := func() {}
	if cfg.KeepAlive > 0 {
		ticker := clk.NewTicker(cfg.KeepAlive)
		ticks, stopTicker = ticker.C(), ticker.Stop
	}
	go q.run(ticks, stopTicker)
	return q
}

// Push queues a frame without blocking
func (q *MirrorQueue) Push(frame Frame) {
	dropped, err := q.outbox.Push(frame)
	switch {
	case errors.Is(err, model.ErrConnectionClosed):
		return
	case errors.Is(err, model.ErrSlowConsumer):
		dropped += q.outbox.Trim(2*q.cfg.Capacity - 1)
	}
	if dropped > 0 {
		q.logger.Debug("mirror behind, frames dropped",
			slog.String("kind", frame.Kind.String()),
			slog.Int("dropped", dropped))
	}
}

// Len returns the number of frames waiting for the mirror
func (q *MirrorQueue) Len() int {
	return q.outbox.Len()
}

// Close delivers what is already queued, stops the goroutine and closes
// the mirror
func (q *MirrorQueue) Close() error {
	q.closeOnce.Do(func() {
		q.outbox.Close()
		close(q.done)
	})
	<-q.stopped
	return q.mirror.Close()
}

func (q *MirrorQueue) run(ticks <-chan time.Time, stopTicker func()) {
	defer close(q.stopped)
	defer stopTicker()

	for {
		select {
		case <-q.outbox.Ready():
			q.flush()
		case <-ticks:
			q.touch()
		case <-q.done:
			q.flush()
			return
		}
	}
}

func (q *MirrorQueue) flush() {
	for _, frame := range q.outbox.Drain() {
		q.publish(frame)
	}
}

func (q *MirrorQueue) publish(frame Frame) {
	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.Timeout)
	defer cancel()

	var err error
	if frame.Kind == KindState {
		err = q.mirror.PublishState(ctx, frame.Data)
	} else {
		err = q.mirror.PublishEvent(ctx, frame.Data)
	}
	if err != nil {
		q.logger.Warn("failed to mirror "+frame.Kind.String(), slog.String("error", err.Error()))
	}
}

func (q *MirrorQueue) touch() {
	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.Timeout)
	defer cancel()

	if err := q.mirror.Touch(ctx); err != nil {
		q.logger.Warn("failed to refresh mirror", slog.String("error", err.Error()))
	}
}
