package mocks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestMockClock_AdvanceMovesNow(t *testing.T) {
	c := NewMockClock(start)
	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestMockClock_TickerFiresWhenDue(t *testing.T) {
	c := NewMockClock(start)
	ticker := c.NewTicker(time.Second)

	c.Advance(500 * time.Millisecond)
	assert.Empty(t, ticker.C())

	c.Advance(500 * time.Millisecond)
	require.Len(t, ticker.C(), 1)
	assert.Equal(t, start.Add(time.Second), <-ticker.C())
}

func TestMockClock_TickerKeepsOnePendingTick(t *testing.T) {
	c := NewMockClock(start)
	ticker := c.NewTicker(time.Second)

	c.Advance(5 * time.Second)
	require.Len(t, ticker.C(), 1)
	assert.Equal(t, start.Add(time.Second), <-ticker.C())

	// Schedule stays aligned to the interval after dropped ticks
	c.Advance(time.Second)
	assert.Equal(t, start.Add(6*time.Second), <-ticker.C())
}

func TestMockClock_StoppedTickerNeverFires(t *testing.T) {
	c := NewMockClock(start)
	ticker := c.NewTicker(time.Second)
	other := c.NewTicker(2 * time.Second)
	assert.Equal(t, 2, c.Tickers())

	ticker.Stop()
	assert.Equal(t, 1, c.Tickers())

	c.Advance(2 * time.Second)
	assert.Empty(t, ticker.C())
	assert.Len(t, other.C(), 1)
}

func TestMockClock_NonPositiveIntervalPanics(t *testing.T) {
	c := NewMockClock(start)
	assert.Panics(t, func() { c.NewTicker(0) })
}
