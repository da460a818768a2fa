package ws

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/mcoot/geoshooter/internal/model"
)

// Registry tracks live connections and the player identity bound to each
type Registry struct {
	sessions map[model.ConnID]*Session
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[model.ConnID]*Session),
		logger:   logger.With(slog.String("component", "ws-registry")),
	}
}

// Add tracks a new, unregistered connection
func (r *Registry) Add(conn Conn) {
	r.mu.Lock()
	r.sessions[conn.ID()] = &Session{Conn: conn, State: StateUnregistered}
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("connection added",
		slog.String("conn_id", string(conn.ID())),
		slog.Int("total_connections", total))
}

// Bind associates a player with a connection, replacing any previous binding
// of that connection. It returns false if the connection is not tracked.
func (r *Registry) Bind(connID model.ConnID, playerID model.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[connID]
	if !ok {
		return false
	}
	s.PlayerID = playerID
	s.State = StateRegistered
	return true
}

// Lookup returns a copy of the session for a connection
func (r *Registry) Lookup(connID model.ConnID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[connID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Remove stops tracking a connection and returns its final session.
// The second result is false if the connection was already removed.
func (r *Registry) Remove(connID model.ConnID) (Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[connID]
	if !ok {
		r.mu.Unlock()
		return Session{}, false
	}
	delete(r.sessions, connID)
	total := len(r.sessions)
	r.mu.Unlock()

	s.State = StateClosed
	r.logger.Info("connection removed",
		slog.String("conn_id", string(connID)),
		slog.String("player_id", string(s.PlayerID)),
		slog.Int("total_connections", total))
	return *s, true
}

// ForEachOpen calls fn for every tracked connection that is still open, in
// connection ID order. fn must not call back into the registry.
func (r *Registry) ForEachOpen(fn func(Conn)) {
	for _, conn := range r.openConns() {
		fn(conn)
	}
}

func (r *Registry) openConns() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.Conn.IsOpen() {
			conns = append(conns, s.Conn)
		}
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID() < conns[j].ID() })
	return conns
}

// Count returns the number of tracked connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every tracked connection. Entries are removed as each
// connection's close is handled, not here.
func (r *Registry) CloseAll(reason string) int {
	r.mu.RLock()
	conns := make([]Conn, 0, len(r.sessions))
	for _, s := range r.sessions {
		conns = append(conns, s.Conn)
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.Close(reason); err != nil {
			r.logger.Warn("failed to close connection",
				slog.String("conn_id", string(conn.ID())),
				slog.String("error", err.Error()))
		}
	}
	r.logger.Info("closed all connections", slog.Int("closed", len(conns)))
	return len(conns)
}
