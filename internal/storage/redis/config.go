package redis

import "time"

// Config holds Redis connection and mirror behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// StateTTL bounds how long the last roster stays visible after the
	// server stops publishing
	StateTTL time.Duration

	// RecentEvents is how many hit events are kept in the feed list
	RecentEvents int64
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		StateTTL:     time.Minute,
		RecentEvents: 50,
	}
}
