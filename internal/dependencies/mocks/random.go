package mocks

import (
	"github.com/mcoot/geoshooter/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	// FloatResults is a queue of results to return from Float64
	FloatResults []float64
	floatIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Float64 returns the next queued result, or 0.5 if none remaining
func (r *MockRandom) Float64() float64 {
	if r.floatIndex >= len(r.FloatResults) {
		return 0.5
	}
	result := r.FloatResults[r.floatIndex]
	r.floatIndex++
	return result
}

// QueueFloat64 adds values to the Float64 result queue
func (r *MockRandom) QueueFloat64(values ...float64) {
	r.FloatResults = append(r.FloatResults, values...)
}
