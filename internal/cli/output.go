package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mcoot/geoshooter/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return NewOutputTo(format, os.Stdout)
}

// NewOutputTo creates a new Output formatter writing to w
func NewOutputTo(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// PrintFrame outputs one broadcast frame received at the given time.
// JSON output is one line per frame so it can be piped.
func (o *Output) PrintFrame(at time.Time, frame protocol.ServerFrame) {
	if o.format == "json" {
		line := FrameLine{Time: at, Type: string(frame.Type)}
		switch {
		case frame.State != nil:
			line.Data = frame.State
		case frame.Hit != nil:
			line.Data = frame.Hit
		}
		data, _ := json.Marshal(line)
		fmt.Fprintln(o.w, string(data))
		return
	}

	timestamp := at.Format("2006-01-02 15:04:05")
	switch {
	case frame.Hit != nil:
		h := frame.Hit
		suffix := ""
		if h.Eliminated {
			suffix = " ELIMINATED"
		}
		fmt.Fprintf(o.w, "[%s] hit: %s -> %s (health %d)%s\n", timestamp, h.Shooter, h.Target, h.Health, suffix)
	case frame.State != nil:
		ids := make([]string, 0, len(frame.State.Players))
		for id, p := range frame.State.Players {
			entry := fmt.Sprintf("%s:%d", id, p.Health)
			if p.IsEliminated {
				entry += "x"
			}
			ids = append(ids, entry)
		}
		sort.Strings(ids)
		fmt.Fprintf(o.w, "[%s] players (%d): %s\n", timestamp, len(ids), strings.Join(ids, " "))
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case PlayerList:
		o.printPlayerList(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID           string    `json:"id"`
	Lat          *float64  `json:"lat"`
	Lon          *float64  `json:"lon"`
	Azimuth      *float64  `json:"azimuth"`
	Health       int       `json:"health"`
	Score        int       `json:"score"`
	Kills        int       `json:"kills"`
	IsEliminated bool      `json:"is_eliminated"`
	JoinedAt     time.Time `json:"joined_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PlayerList response type
type PlayerList struct {
	Players []Player `json:"players"`
	Count   int      `json:"count"`
}

// LeaderboardEntry response type
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	PlayerID     string `json:"player_id"`
	Score        int    `json:"score"`
	Kills        int    `json:"kills"`
	Health       int    `json:"health"`
	IsEliminated bool   `json:"is_eliminated"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
}

// HealthResult response type
type HealthResult struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
	Players     int    `json:"players"`
}

// FrameLine is the JSON line form of a watched frame
type FrameLine struct {
	Time time.Time `json:"time"`
	Type string    `json:"type"`
	Data any       `json:"data"`
}

func formatPosition(p Player) string {
	if p.Lat == nil || p.Lon == nil {
		return "no fix"
	}
	return fmt.Sprintf("%.6f, %.6f", *p.Lat, *p.Lon)
}

func formatAzimuth(az *float64) string {
	if az == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *az)
}

func (o *Output) printPlayer(p Player) {
	fmt.Fprintf(o.w, "Player: %s\n", p.ID)
	fmt.Fprintf(o.w, "Position: %s\n", formatPosition(p))
	fmt.Fprintf(o.w, "Azimuth: %s\n", formatAzimuth(p.Azimuth))
	fmt.Fprintf(o.w, "Health: %d\n", p.Health)
	fmt.Fprintf(o.w, "Score: %d (%d kills)\n", p.Score, p.Kills)
	if p.IsEliminated {
		fmt.Fprintln(o.w, "Eliminated: yes")
	}
}

func (o *Output) printPlayerList(l PlayerList) {
	fmt.Fprintf(o.w, "Players (%d):\n", l.Count)
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  ID\tPOSITION\tAZIMUTH\tHEALTH\tSCORE\tKILLS")
	for _, p := range l.Players {
		health := fmt.Sprint(p.Health)
		if p.IsEliminated {
			health += " (out)"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%d\t%d\n",
			p.ID, formatPosition(p), formatAzimuth(p.Azimuth), health, p.Score, p.Kills)
	}
	_ = tw.Flush()
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Fprintln(o.w, "No players")
		return
	}
	fmt.Fprintln(o.w, "Top Players:")
	for _, e := range l.Entries {
		out := ""
		if e.IsEliminated {
			out = " [eliminated]"
		}
		fmt.Fprintf(o.w, "  %d. %s: %d points, %d kills%s\n", e.Rank, e.PlayerID, e.Score, e.Kills, out)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Connections: %d\n", h.Connections)
	fmt.Fprintf(o.w, "Players: %d\n", h.Players)
}
