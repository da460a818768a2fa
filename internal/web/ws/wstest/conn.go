// Package wstest provides an in-memory ws.Conn for tests
package wstest

import (
	"sync"

	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/protocol"
	"github.com/mcoot/geoshooter/internal/web/ws"
)

// Conn records every frame sent to it
type Conn struct {
	id model.ConnID

	mu          sync.Mutex
	frames      []ws.Frame
	open        bool
	closeReason string
	closeCount  int
	sendErr     error
}

// NewConn creates an open connection with the given ID
func NewConn(id model.ConnID) *Conn {
	return &Conn{id: id, open: true}
}

func (c *Conn) ID() model.ConnID {
	return c.id
}

func (c *Conn) Send(frame ws.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	if !c.open {
		return model.ErrConnectionClosed
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *Conn) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Conn) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
	c.closeReason = reason
	c.closeCount++
	return nil
}

// FailSends makes every subsequent Send return err
func (c *Conn) FailSends(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// Frames returns a copy of everything sent so far
func (c *Conn) Frames() []ws.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ws.Frame(nil), c.frames...)
}

// Reset forgets recorded frames
func (c *Conn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = nil
}

func (c *Conn) CloseReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeReason
}

func (c *Conn) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCount
}

// Decoded parses every recorded frame as a server frame, skipping any that
// fail to decode
func (c *Conn) Decoded() []protocol.ServerFrame {
	var out []protocol.ServerFrame
	for _, f := range c.Frames() {
		frame, err := protocol.DecodeServer(f.Data)
		if err != nil {
			continue
		}
		out = append(out, frame)
	}
	return out
}

// LastState returns the most recent roster frame, or nil if none was sent
func (c *Conn) LastState() *protocol.UpdatePlayersFrame {
	frames := c.Decoded()
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].State != nil {
			return frames[i].State
		}
	}
	return nil
}

// Hits returns every hit frame in order
func (c *Conn) Hits() []protocol.HitFrame {
	var hits []protocol.HitFrame
	for _, f := range c.Decoded() {
		if f.Hit != nil {
			hits = append(hits, *f.Hit)
		}
	}
	return hits
}
