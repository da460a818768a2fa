package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/protocol"
)

var frameTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestPrintPlayerList(t *testing.T) {
	var buf bytes.Buffer
	lat, lon, az := 1.5, 2.25, 90.0

	NewOutputTo("text", &buf).Print(PlayerList{
		Count: 2,
		Players: []Player{
			{ID: "alice", Lat: &lat, Lon: &lon, Azimuth: &az, Health: 100, Score: 100, Kills: 1},
			{ID: "bob", Health: 0, IsEliminated: true},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "Players (2):")
	assert.Contains(t, out, "1.500000, 2.250000")
	assert.Contains(t, out, "90.0")
	assert.Contains(t, out, "no fix")
	assert.Contains(t, out, "0 (out)")
}

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	NewOutputTo("text", &buf).Print(Leaderboard{Entries: []LeaderboardEntry{
		{Rank: 1, PlayerID: "alice", Score: 100, Kills: 1, Health: 100},
		{Rank: 2, PlayerID: "bob", IsEliminated: true},
	}})

	assert.Equal(t, "Top Players:\n"+
		"  1. alice: 100 points, 1 kills\n"+
		"  2. bob: 0 points, 0 kills [eliminated]\n", buf.String())

	buf.Reset()
	NewOutputTo("text", &buf).Print(Leaderboard{})
	assert.Equal(t, "No players\n", buf.String())
}

func TestPrintHealthJSON(t *testing.T) {
	var buf bytes.Buffer
	NewOutputTo("json", &buf).Print(HealthResult{Status: "ok", Connections: 3, Players: 2})

	var decoded HealthResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, HealthResult{Status: "ok", Connections: 3, Players: 2}, decoded)
}

func TestPrintFrameText(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutputTo("text", &buf)

	out.PrintFrame(frameTime, protocol.ServerFrame{
		Type: protocol.TypeHit,
		Hit:  &protocol.HitFrame{Shooter: "alice", Target: "bob", Health: 0, Eliminated: true},
	})
	out.PrintFrame(frameTime, protocol.ServerFrame{
		Type: protocol.TypeUpdatePlayers,
		State: &protocol.UpdatePlayersFrame{Players: map[model.PlayerID]protocol.PlayerView{
			"bob":   {ID: "bob", Health: 0, IsEliminated: true},
			"alice": {ID: "alice", Health: 100},
		}},
	})

	assert.Equal(t,
		"[2024-01-01 12:00:00] hit: alice -> bob (health 0) ELIMINATED\n"+
			"[2024-01-01 12:00:00] players (2): alice:100 bob:0x\n",
		buf.String())
}

func TestPrintFrameJSON(t *testing.T) {
	var buf bytes.Buffer
	NewOutputTo("json", &buf).PrintFrame(frameTime, protocol.ServerFrame{
		Type: protocol.TypeHit,
		Hit:  &protocol.HitFrame{Type: protocol.TypeHit, Shooter: "alice", Target: "bob", Health: 90},
	})

	var line struct {
		Time time.Time         `json:"time"`
		Type string            `json:"type"`
		Data protocol.HitFrame `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hit", line.Type)
	assert.True(t, frameTime.Equal(line.Time))
	assert.Equal(t, model.PlayerID("bob"), line.Data.Target)
	assert.Equal(t, 90, line.Data.Health)
}
