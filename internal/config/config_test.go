package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/geoshooter/internal/services/combat"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, combat.DefaultConfig(), cfg.Combat())
	assert.Equal(t, 16, cfg.OutboxCapacity)
	assert.Equal(t, int64(64*1024), cfg.ReadLimitBytes)
	assert.Equal(t, MirrorNone, cfg.Mirror)
	assert.Equal(t, time.Minute, cfg.MirrorTTL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("GEOSHOOTER_PORT", "9090")
	t.Setenv("GEOSHOOTER_LOG_LEVEL", "DEBUG")
	t.Setenv("GEOSHOOTER_RANGE_METERS", "25.5")
	t.Setenv("GEOSHOOTER_ALIGNMENT_TOLERANCE_DEGREES", "10")
	t.Setenv("GEOSHOOTER_DAMAGE", "20")
	t.Setenv("GEOSHOOTER_ELIMINATION_SCORE", "250")
	t.Setenv("GEOSHOOTER_OUTBOX_CAPACITY", "4")
	t.Setenv("GEOSHOOTER_MIRROR", "redis")
	t.Setenv("GEOSHOOTER_REDIS_URL", "redis://cache:6379/1")
	t.Setenv("GEOSHOOTER_MIRROR_TTL", "30s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, combat.Config{
		RangeMeters:               25.5,
		AlignmentToleranceDegrees: 10,
		Damage:                    20,
		EliminationScore:          250,
	}, cfg.Combat())
	assert.Equal(t, 4, cfg.Client().OutboxCapacity)
	assert.Equal(t, MirrorRedis, cfg.Mirror)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, 30*time.Second, cfg.MirrorTTL)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port out of range", key: "GEOSHOOTER_PORT", value: "70000"},
		{name: "unknown log level", key: "GEOSHOOTER_LOG_LEVEL", value: "chatty"},
		{name: "negative range", key: "GEOSHOOTER_RANGE_METERS", value: "-1"},
		{name: "tolerance over 180", key: "GEOSHOOTER_ALIGNMENT_TOLERANCE_DEGREES", value: "181"},
		{name: "negative damage", key: "GEOSHOOTER_DAMAGE", value: "-5"},
		{name: "zero outbox", key: "GEOSHOOTER_OUTBOX_CAPACITY", value: "0"},
		{name: "unknown mirror", key: "GEOSHOOTER_MIRROR", value: "kafka"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_PortArgumentOverridesEnvironment(t *testing.T) {
	for _, envPort := range []string{"9090", "abc", "70000"} {
		t.Run(envPort, func(t *testing.T) {
			t.Setenv("GEOSHOOTER_PORT", envPort)

			cfg, err := Load("3000")
			require.NoError(t, err)
			assert.Equal(t, 3000, cfg.Port)
		})
	}
}

func TestLoad_InvalidPortArgument(t *testing.T) {
	_, err := Load("http")
	assert.ErrorContains(t, err, "invalid port")
}

func TestValidate_RedisMirrorNeedsURL(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Mirror = MirrorRedis
	cfg.RedisURL = ""
	assert.ErrorContains(t, cfg.Validate(), "redis_url")
}

func TestParsePort(t *testing.T) {
	port, err := ParsePort("3000")
	require.NoError(t, err)
	assert.Equal(t, 3000, port)

	for _, bad := range []string{"", "abc", "0", "65536", "-80"} {
		_, err := ParsePort(bad)
		assert.Error(t, err, "port %q", bad)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for input, want := range tests {
		got, err := ParseLogLevel(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
}
