package ws_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/geoshooter/internal/dependencies/mocks"
	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/storage"
	"github.com/mcoot/geoshooter/internal/testutil"
	"github.com/mcoot/geoshooter/internal/web/ws"
	"github.com/mcoot/geoshooter/internal/web/ws/wstest"
)

type recordingMirror struct {
	mu     sync.Mutex
	states [][]byte
	events [][]byte
	err    error
}

func (m *recordingMirror) PublishState(_ context.Context, frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, frame)
	return m.err
}

func (m *recordingMirror) PublishEvent(_ context.Context, frame []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, frame)
	return m.err
}

func (m *recordingMirror) Touch(context.Context) error { return nil }

func (m *recordingMirror) Close() error { return nil }

func newMirrorQueue(t *testing.T, mirror storage.Mirror) *ws.MirrorQueue {
	q := ws.NewMirrorQueue(mirror, ws.MirrorQueueConfig{Capacity: 8},
		mocks.NewMockClock(testutil.FixedTime), testutil.NopLogger())
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func TestBroadcaster_BroadcastStateReachesEveryOpenConnection(t *testing.T) {
	r := ws.NewRegistry(testutil.NopLogger())
	c1, c2, gone := wstest.NewConn("c1"), wstest.NewConn("c2"), wstest.NewConn("c3")
	r.Add(c1)
	r.Add(c2)
	r.Add(gone)
	_ = gone.Close("")
	b := ws.NewBroadcaster(r, nil, testutil.NopLogger())

	players := []*model.Player{model.NewPlayer("alice", "c1", testutil.FixedTime)}
	b.BroadcastState(context.Background(), players)

	for _, c := range []*wstest.Conn{c1, c2} {
		frames := c.Frames()
		require.Len(t, frames, 1)
		assert.Equal(t, ws.KindState, frames[0].Kind)
		state := c.LastState()
		require.NotNil(t, state)
		assert.Contains(t, state.Players, model.PlayerID("alice"))
	}
	assert.Empty(t, gone.Frames())
}

func TestBroadcaster_BroadcastEvent(t *testing.T) {
	r := ws.NewRegistry(testutil.NopLogger())
	c1 := wstest.NewConn("c1")
	r.Add(c1)
	b := ws.NewBroadcaster(r, nil, testutil.NopLogger())

	b.BroadcastEvent(context.Background(), model.HitEvent{Shooter: "alice", Target: "bob", Health: 90})

	frames := c1.Frames()
	require.Len(t, frames, 1)
	assert.Equal(t, ws.KindEvent, frames[0].Kind)
	hits := c1.Hits()
	require.Len(t, hits, 1)
	assert.Equal(t, model.PlayerID("bob"), hits[0].Target)
	assert.Equal(t, 90, hits[0].Health)
}

func TestBroadcaster_FailingConnectionDoesNotAbortFanOut(t *testing.T) {
	r := ws.NewRegistry(testutil.NopLogger())
	broken, healthy := wstest.NewConn("c1"), wstest.NewConn("c2")
	broken.FailSends(errors.New("write failed"))
	r.Add(broken)
	r.Add(healthy)
	logger, logs := testutil.CaptureLogger()
	b := ws.NewBroadcaster(r, nil, logger)

	b.BroadcastState(context.Background(), nil)

	assert.Len(t, healthy.Frames(), 1)
	assert.Contains(t, logs.String(), "failed to queue frame")
}

func TestBroadcaster_Mirror(t *testing.T) {
	r := ws.NewRegistry(testutil.NopLogger())
	mirror := &recordingMirror{}
	q := newMirrorQueue(t, mirror)
	b := ws.NewBroadcaster(r, q, testutil.NopLogger())

	b.BroadcastState(context.Background(), nil)
	b.BroadcastEvent(context.Background(), model.HitEvent{Shooter: "a", Target: "b"})
	require.NoError(t, q.Close())

	assert.Len(t, mirror.states, 1)
	assert.Len(t, mirror.events, 1)
	assert.JSONEq(t, `{"type":"updatePlayers","players":{}}`, string(mirror.states[0]))
}

func TestBroadcaster_MirrorFailureIsLogged(t *testing.T) {
	r := ws.NewRegistry(testutil.NopLogger())
	c1 := wstest.NewConn("c1")
	r.Add(c1)
	mirror := &recordingMirror{err: errors.New("redis down")}
	logger, logs := testutil.CaptureLogger()
	q := ws.NewMirrorQueue(mirror, ws.MirrorQueueConfig{}, mocks.NewMockClock(testutil.FixedTime), logger)
	b := ws.NewBroadcaster(r, q, logger)

	b.BroadcastState(context.Background(), nil)
	require.NoError(t, q.Close())

	assert.Len(t, c1.Frames(), 1)
	assert.Contains(t, logs.String(), "failed to mirror state")
}

func TestBroadcaster_BlockedMirrorDoesNotDelayConnections(t *testing.T) {
	r := ws.NewRegistry(testutil.NopLogger())
	c1 := wstest.NewConn("c1")
	r.Add(c1)
	mirror := newBlockingMirror()
	q := newMirrorQueue(t, mirror)
	defer mirror.release()
	b := ws.NewBroadcaster(r, q, testutil.NopLogger())

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.BroadcastState(context.Background(), nil)
		b.BroadcastEvent(context.Background(), model.HitEvent{Shooter: "a", Target: "b"})
		b.BroadcastState(context.Background(), nil)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast waited on the mirror")
	}
	assert.Len(t, c1.Frames(), 3)
}
