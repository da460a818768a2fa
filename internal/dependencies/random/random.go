package random

import (
	"math/rand/v2"
	"sync"
)

// Random provides random numbers that can be mocked for testing
type Random interface {
	// Float64 returns a random float in [0, 1)
	Float64() float64
}

// Source implements Random with a PCG generator. It is safe for
// concurrent use.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Source seeded from the runtime's entropy
func New() *Source {
	return NewSeeded(rand.Uint64(), rand.Uint64())
}

// NewSeeded creates a Source that replays the same sequence for the same
// seed, for reproducible bot runs
func NewSeeded(seed1, seed2 uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

// Float64 returns a random float in [0, 1)
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
