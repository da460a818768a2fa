package factory

import (
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mcoot/geoshooter/internal/dependencies/mocks"
	"github.com/mcoot/geoshooter/internal/services/combat"
	"github.com/mcoot/geoshooter/internal/storage/memory"
	redisstorage "github.com/mcoot/geoshooter/internal/storage/redis"
	"github.com/mcoot/geoshooter/internal/telemetry"
	"github.com/mcoot/geoshooter/internal/testutil"
	"github.com/mcoot/geoshooter/internal/web/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	store := memory.New(mockClock)

	app := newWithDependencies(store, nil, ws.MirrorQueueConfig{}, mockClock, telemetry.NewNoop(),
		combat.DefaultConfig(), ws.DefaultClientConfig(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}

// NewTestAppWithMirror creates a TestApp whose broadcasts are mirrored
// through the given Redis client
func NewTestAppWithMirror(client *goredis.Client) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	store := memory.New(mockClock)

	redisCfg := redisstorage.DefaultConfig()
	mirror := redisstorage.NewWithClient(client, redisCfg)

	app := newWithDependencies(store, mirror, ws.DefaultMirrorQueueConfig(redisCfg.StateTTL), mockClock, telemetry.NewNoop(),
		combat.DefaultConfig(), ws.DefaultClientConfig(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
	}
}
