package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Connection errors
	ErrConnectionClosed = errors.New("connection closed")
	ErrSlowConsumer     = errors.New("connection outbound queue overflowed")
)
