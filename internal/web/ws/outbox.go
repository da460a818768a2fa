package ws

import (
	"sync"

	"github.com/mcoot/geoshooter/internal/model"
)

// FrameKind separates droppable state frames from events that must arrive
type FrameKind int

const (
	// KindState is a full roster snapshot; a newer one supersedes it
	KindState FrameKind = iota
	// KindEvent is a discrete event such as a hit; never dropped
	KindEvent
)

func (k FrameKind) String() string {
	switch k {
	case KindState:
		return "state"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Frame is one serialized outbound message
type Frame struct {
	Kind FrameKind
	Data []byte
}

// DefaultOutboxCapacity is the soft limit on queued frames per connection
const DefaultOutboxCapacity = 16

// Outbox is a bounded per-connection queue of outbound frames.
//
// A state frame pushed directly behind another state frame replaces it.
// Once the queue holds more than its capacity, the oldest state frame is
// discarded. Events are never discarded: if the queue holds only events and
// reaches twice its capacity, Push reports ErrSlowConsumer and the owner is
// expected to close the connection.
type Outbox struct {
	mu       sync.Mutex
	frames   []Frame
	capacity int
	closed   bool
	ready    chan struct{}
}

// NewOutbox creates an outbox with the given soft capacity
func NewOutbox(capacity int) *Outbox {
	if capacity < 1 {
		capacity = DefaultOutboxCapacity
	}
	return &Outbox{
		frames:   make([]Frame, 0, capacity),
		capacity: capacity,
		ready:    make(chan struct{}, 1),
	}
}

// Push queues a frame and returns how many state frames were discarded to
// make room for it
func (o *Outbox) Push(frame Frame) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return 0, model.ErrConnectionClosed
	}

	dropped := 0
	if n := len(o.frames); frame.Kind == KindState && n > 0 && o.frames[n-1].Kind == KindState {
		o.frames[n-1] = frame
		dropped++
	} else {
		o.frames = append(o.frames, frame)
	}

	for len(o.frames) > o.capacity {
		if !o.dropOldestState() {
			break
		}
		dropped++
	}

	if len(o.frames) >= 2*o.capacity {
		return dropped, model.ErrSlowConsumer
	}

	select {
	case o.ready <- struct{}{}:
	default:
	}
	return dropped, nil
}

// dropOldestState removes the first queued state frame, reporting whether
// there was one. Caller holds the lock.
func (o *Outbox) dropOldestState() bool {
	for i, f := range o.frames {
		if f.Kind == KindState {
			o.frames = append(o.frames[:i], o.frames[i+1:]...)
			return true
		}
	}
	return false
}

// Trim discards the oldest frames until at most max remain and returns how
// many were discarded
func (o *Outbox) Trim(max int) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := len(o.frames) - max
	if n <= 0 {
		return 0
	}
	o.frames = append(o.frames[:0], o.frames[n:]...)
	select {
	case o.ready <- struct{}{}:
	default:
	}
	return n
}

// Drain removes and returns every queued frame in order
func (o *Outbox) Drain() []Frame {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.frames) == 0 {
		return nil
	}
	frames := o.frames
	o.frames = make([]Frame, 0, o.capacity)
	return frames
}

// Ready is signalled whenever a frame is queued
func (o *Outbox) Ready() <-chan struct{} {
	return o.ready
}

// Len returns the number of queued frames
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.frames)
}

// Close rejects any further pushes. Already queued frames stay drainable.
func (o *Outbox) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}
