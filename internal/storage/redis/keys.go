package redis

import "fmt"

// Key prefix for all mirrored game data
const keyPrefix = "geoshooter"

// stateKey returns the Redis key holding the latest updatePlayers frame
func stateKey() string {
	return fmt.Sprintf("%s:state", keyPrefix)
}

// recentEventsKey returns the Redis key for the LIST of recent hit frames
func recentEventsKey() string {
	return fmt.Sprintf("%s:events:recent", keyPrefix)
}

// eventsChannel returns the pub/sub channel every frame is published on
func eventsChannel() string {
	return fmt.Sprintf("%s:events", keyPrefix)
}
