// Package config loads server settings from GEOSHOOTER_* environment
// variables. There is no config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mcoot/geoshooter/internal/services/combat"
	"github.com/mcoot/geoshooter/internal/web/ws"
)

// EnvPrefix is prepended to every key when reading the environment
const EnvPrefix = "GEOSHOOTER"

// Mirror backends
const (
	MirrorNone  = ""
	MirrorRedis = "redis"
)

// Keys
const (
	KeyPort                      = "port"
	KeyLogLevel                  = "log_level"
	KeyRangeMeters               = "range_meters"
	KeyAlignmentToleranceDegrees = "alignment_tolerance_degrees"
	KeyDamage                    = "damage"
	KeyEliminationScore          = "elimination_score"
	KeyOutboxCapacity            = "outbox_capacity"
	KeyReadLimitBytes            = "read_limit_bytes"
	KeyMirror                    = "mirror"
	KeyRedisURL                  = "redis_url"
	KeyMirrorTTL                 = "mirror_ttl"
)

// DefaultPort is the listen port when neither the environment nor the
// command line names one
const DefaultPort = 8080

// Config holds every server setting
type Config struct {
	Port     int
	LogLevel string

	RangeMeters               float64
	AlignmentToleranceDegrees float64
	Damage                    int
	EliminationScore          int

	OutboxCapacity int
	ReadLimitBytes int64

	Mirror    string
	RedisURL  string
	MirrorTTL time.Duration
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyLogLevel, "info")

	v.SetDefault(KeyRangeMeters, combat.DefaultRangeMeters)
	v.SetDefault(KeyAlignmentToleranceDegrees, combat.DefaultAlignmentToleranceDegrees)
	v.SetDefault(KeyDamage, combat.DefaultDamage)
	v.SetDefault(KeyEliminationScore, combat.DefaultEliminationScore)

	v.SetDefault(KeyOutboxCapacity, ws.DefaultOutboxCapacity)
	v.SetDefault(KeyReadLimitBytes, ws.DefaultClientConfig().ReadLimit)

	v.SetDefault(KeyMirror, MirrorNone)
	v.SetDefault(KeyRedisURL, "redis://localhost:6379")
	v.SetDefault(KeyMirrorTTL, "1m")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads the environment over the defaults and validates the result.
// A non-empty portArg replaces GEOSHOOTER_PORT before validation.
func Load(portArg string) (Config, error) {
	v := newViper()
	if portArg != "" {
		port, err := ParsePort(portArg)
		if err != nil {
			return Config{}, err
		}
		v.Set(KeyPort, port)
	}

	cfg := Config{
		Port:                      v.GetInt(KeyPort),
		LogLevel:                  strings.ToLower(v.GetString(KeyLogLevel)),
		RangeMeters:               v.GetFloat64(KeyRangeMeters),
		AlignmentToleranceDegrees: v.GetFloat64(KeyAlignmentToleranceDegrees),
		Damage:                    v.GetInt(KeyDamage),
		EliminationScore:          v.GetInt(KeyEliminationScore),
		OutboxCapacity:            v.GetInt(KeyOutboxCapacity),
		ReadLimitBytes:            v.GetInt64(KeyReadLimitBytes),
		Mirror:                    strings.ToLower(v.GetString(KeyMirror)),
		RedisURL:                  v.GetString(KeyRedisURL),
		MirrorTTL:                 v.GetDuration(KeyMirrorTTL),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be within [1, 65535], got %d", c.Port)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Combat().Validate(); err != nil {
		return err
	}
	if c.OutboxCapacity < 1 {
		return fmt.Errorf("outbox capacity must be positive, got %d", c.OutboxCapacity)
	}
	if c.ReadLimitBytes < 1 {
		return fmt.Errorf("read limit must be positive, got %d", c.ReadLimitBytes)
	}

	switch c.Mirror {
	case MirrorNone:
	case MirrorRedis:
		if c.RedisURL == "" {
			return errors.New("redis_url required when mirror is redis")
		}
		if c.MirrorTTL <= 0 {
			return fmt.Errorf("mirror ttl must be positive, got %s", c.MirrorTTL)
		}
	default:
		return fmt.Errorf("invalid mirror %q: must be empty or %q", c.Mirror, MirrorRedis)
	}
	return nil
}

// Combat returns the hit test tuning
func (c Config) Combat() combat.Config {
	return combat.Config{
		RangeMeters:               c.RangeMeters,
		AlignmentToleranceDegrees: c.AlignmentToleranceDegrees,
		Damage:                    c.Damage,
		EliminationScore:          c.EliminationScore,
	}
}

// Client returns the per-connection transport settings
func (c Config) Client() ws.ClientConfig {
	cc := ws.DefaultClientConfig()
	cc.OutboxCapacity = c.OutboxCapacity
	cc.ReadLimit = c.ReadLimitBytes
	return cc
}

// ParsePort parses a listen port given on the command line
func ParsePort(arg string) (int, error) {
	port, err := strconv.Atoi(arg)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q: must be a number within [1, 65535]", arg)
	}
	return port, nil
}

// ParseLogLevel maps a level name onto slog
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", level)
	}
}
