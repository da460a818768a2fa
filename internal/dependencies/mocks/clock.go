package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/geoshooter/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing.
// It is safe to read from connection goroutines while a test advances it.
// Tickers only fire when the test moves the clock.
type MockClock struct {
	mu          sync.Mutex
	currentTime time.Time
	tickers     []*MockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// NewTicker creates a ticker whose first tick is due d after the current
// mocked time
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	if d <= 0 {
		panic("mocks: non-positive ticker interval")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t := &MockTicker{
		clock:    c,
		interval: d,
		next:     c.currentTime.Add(d),
		// Like time.Ticker, one pending tick is kept and the rest dropped
		ch: make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance moves the clock forward by the given duration, firing every
// ticker that comes due along the way
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = c.currentTime.Add(d)

	for _, t := range c.tickers {
		for !t.next.After(c.currentTime) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.interval)
		}
	}
}

// Set sets the clock to the given time without firing tickers
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// Tickers returns the number of tickers that have not been stopped
func (c *MockClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// MockTicker is a ticker driven by a MockClock
type MockTicker struct {
	clock    *MockClock
	interval time.Duration
	next     time.Time
	ch       chan time.Time
}

// C returns the tick channel
func (t *MockTicker) C() <-chan time.Time {
	return t.ch
}

// Stop detaches the ticker from its clock
func (t *MockTicker) Stop() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, other := range c.tickers {
		if other == t {
			c.tickers = append(c.tickers[:i], c.tickers[i+1:]...)
			return
		}
	}
}
