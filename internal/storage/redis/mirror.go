package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/geoshooter/internal/storage"
)

// Mirror copies outbound frames into Redis for spectator dashboards.
// The latest state frame lives under a TTL'd key and hit frames are kept in
// a capped list. Every frame is also published on a pub/sub channel.
// Once the server stops calling Touch the keys expire, so a missing state
// key means the server is gone.
type Mirror struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis mirror and clears any state left by a previous run
func New(cfg Config) (*Mirror, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	m := NewWithClient(client, cfg)
	if err := m.Reset(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// NewWithClient creates a Redis mirror with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Mirror {
	return &Mirror{
		client: client,
		cfg:    cfg,
	}
}

// Ensure Mirror implements the interface
var _ storage.Mirror = (*Mirror)(nil)

// Reset drops mirrored state so dashboards never show a previous process's roster
func (m *Mirror) Reset(ctx context.Context) error {
	return m.client.Del(ctx, stateKey(), recentEventsKey()).Err()
}

// PublishState stores the frame as the current roster and publishes it
func (m *Mirror) PublishState(ctx context.Context, frame []byte) error {
	pipe := m.client.Pipeline()
	pipe.Set(ctx, stateKey(), frame, m.cfg.StateTTL)
	pipe.Publish(ctx, eventsChannel(), frame)
	_, err := pipe.Exec(ctx)
	return err
}

// PublishEvent appends the frame to the recent events feed and publishes it
func (m *Mirror) PublishEvent(ctx context.Context, frame []byte) error {
	pipe := m.client.Pipeline()
	pipe.LPush(ctx, recentEventsKey(), frame)
	if m.cfg.RecentEvents > 0 {
		pipe.LTrim(ctx, recentEventsKey(), 0, m.cfg.RecentEvents-1)
	}
	if m.cfg.StateTTL > 0 {
		pipe.Expire(ctx, recentEventsKey(), m.cfg.StateTTL)
	}
	pipe.Publish(ctx, eventsChannel(), frame)
	_, err := pipe.Exec(ctx)
	return err
}

// Touch extends the state and recent events keys by another StateTTL.
// Missing keys are left missing.
func (m *Mirror) Touch(ctx context.Context) error {
	if m.cfg.StateTTL <= 0 {
		return nil
	}
	pipe := m.client.Pipeline()
	pipe.Expire(ctx, stateKey(), m.cfg.StateTTL)
	pipe.Expire(ctx, recentEventsKey(), m.cfg.StateTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Close closes the Redis connection
func (m *Mirror) Close() error {
	return m.client.Close()
}
