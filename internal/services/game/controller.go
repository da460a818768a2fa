package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/protocol"
	"github.com/mcoot/geoshooter/internal/services/combat"
	"github.com/mcoot/geoshooter/internal/storage"
	"github.com/mcoot/geoshooter/internal/telemetry"
	"github.com/mcoot/geoshooter/internal/web/ws"
)

// ShutdownReason is the close reason sent to clients when the server stops
const ShutdownReason = "server shutting down"

// Controller routes client messages through the per-connection state
// machine. Every handler runs to completion under one lock, so the roster
// and the connection registry change together and each handler sees the
// previous handler's effects.
type Controller struct {
	mu           sync.Mutex
	shuttingDown bool

	storage     storage.Storage
	combat      *combat.Service
	registry    *ws.Registry
	broadcaster *ws.Broadcaster
	metrics     *telemetry.Metrics
	logger      *slog.Logger
}

// NewController creates a new Controller
func NewController(
	storage storage.Storage,
	combatService *combat.Service,
	registry *ws.Registry,
	broadcaster *ws.Broadcaster,
	metrics *telemetry.Metrics,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:     storage,
		combat:      combatService,
		registry:    registry,
		broadcaster: broadcaster,
		metrics:     metrics,
		logger:      logger.With(slog.String("component", "game")),
	}
}

// HandleConnect tracks a new connection in the unregistered state
func (c *Controller) HandleConnect(ctx context.Context, conn ws.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shuttingDown {
		_ = conn.Close(ShutdownReason)
		return
	}

	c.registry.Add(conn)
	c.metrics.ConnectionOpened(ctx)
}

// HandleMessage decodes and dispatches one inbound frame. Protocol errors
// are logged and dropped; the connection stays usable.
func (c *Controller) HandleMessage(ctx context.Context, connID model.ConnID, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		c.metrics.MessageRejected(ctx, rejectReason(err))
		c.logger.Warn("dropping invalid message",
			slog.String("conn_id", string(connID)),
			slog.Int("size", len(data)),
			slog.String("error", err.Error()))
		return
	}
	c.metrics.MessageReceived(ctx, string(msg.Type()))

	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.registry.Lookup(connID)
	if !ok {
		c.logger.Debug("message on untracked connection", slog.String("conn_id", string(connID)))
		return
	}

	switch m := msg.(type) {
	case protocol.Register:
		c.register(ctx, session, m.ID)
	case protocol.Update:
		if c.owns(ctx, session, m.ID, m.Type()) {
			c.update(ctx, m)
		}
	case protocol.Shoot:
		if c.owns(ctx, session, m.Shooter, m.Type()) {
			c.shoot(ctx, m.Shooter)
		}
	}
}

// HandleClose removes the connection and, if it still owns its player, the
// player too. Closing an already closed connection does nothing.
func (c *Controller) HandleClose(ctx context.Context, connID model.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, removed := c.registry.Remove(connID)
	if !removed {
		return
	}
	c.metrics.ConnectionClosed(ctx)

	if session.PlayerID == "" {
		return
	}
	if !c.removeOwnedPlayer(ctx, session.PlayerID, connID) {
		return
	}

	c.logger.Info("player left", slog.String("player_id", string(session.PlayerID)))
	c.broadcastState(ctx)
}

// Shutdown refuses new connections and closes every open one. Each close
// then runs through HandleClose as its pumps exit.
func (c *Controller) Shutdown(ctx context.Context) {
	c.mu.Lock()
	c.shuttingDown = true
	c.mu.Unlock()

	closed := c.registry.CloseAll(ShutdownReason)
	c.logger.Info("game controller shut down", slog.Int("closed_connections", closed))
}

// Snapshot returns a copy of the current roster
func (c *Controller) Snapshot(ctx context.Context) ([]*model.Player, error) {
	return c.storage.ListPlayers(ctx)
}

// GetPlayer returns a copy of one player
func (c *Controller) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return c.storage.GetPlayer(ctx, id)
}

// ConnectionCount returns the number of live connections
func (c *Controller) ConnectionCount() int {
	return c.registry.Count()
}

func (c *Controller) register(ctx context.Context, session ws.Session, id model.PlayerID) {
	connID := session.Conn.ID()

	// Re-registering under a new ID abandons the old identity
	if session.State == ws.StateRegistered && session.PlayerID != id {
		c.removeOwnedPlayer(ctx, session.PlayerID, connID)
	}

	if _, err := c.storage.RegisterPlayer(ctx, id, connID); err != nil {
		c.logger.Error("failed to register player",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()))
		return
	}
	c.registry.Bind(connID, id)

	c.logger.Info("player registered",
		slog.String("player_id", string(id)),
		slog.String("conn_id", string(connID)))
	c.broadcastState(ctx)
}

func (c *Controller) update(ctx context.Context, m protocol.Update) {
	if err := c.storage.UpdatePlayer(ctx, m.ID, m.PlayerUpdate()); err != nil {
		c.logger.Error("failed to update player",
			slog.String("player_id", string(m.ID)),
			slog.String("error", err.Error()))
		return
	}
	c.broadcastState(ctx)
}

func (c *Controller) shoot(ctx context.Context, shooter model.PlayerID) {
	hits, err := c.combat.ResolveShoot(ctx, shooter)
	if err != nil {
		c.logger.Error("failed to resolve shot",
			slog.String("player_id", string(shooter)),
			slog.String("error", err.Error()))
		return
	}

	eliminations := 0
	for _, hit := range hits {
		if hit.Eliminated {
			eliminations++
		}
	}
	c.metrics.ShotResolved(ctx, len(hits), eliminations)

	if len(hits) == 0 {
		return
	}
	for _, hit := range hits {
		c.broadcaster.BroadcastEvent(ctx, hit)
	}
	c.broadcastState(ctx)
}

// owns reports whether a message naming id may act on the connection's
// behalf: the connection must be registered as id and still own that
// player record. Anything else is ignored.
func (c *Controller) owns(ctx context.Context, session ws.Session, id model.PlayerID, msgType protocol.MessageType) bool {
	log := c.logger.With(
		slog.String("conn_id", string(session.Conn.ID())),
		slog.String("type", string(msgType)))

	if session.State != ws.StateRegistered {
		log.Debug("ignoring message before register")
		return false
	}
	if session.PlayerID != id {
		log.Debug("ignoring message for another player",
			slog.String("player_id", string(session.PlayerID)),
			slog.String("named_id", string(id)))
		return false
	}

	player, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrPlayerNotFound) {
			log.Error("failed to load player", slog.String("error", err.Error()))
		}
		return false
	}
	if player.ConnID != session.Conn.ID() {
		log.Debug("ignoring message from superseded connection",
			slog.String("player_id", string(id)))
		return false
	}
	return true
}

// removeOwnedPlayer deletes the player only while connID still owns it, so
// a stale connection never removes a newer registration of the same ID
func (c *Controller) removeOwnedPlayer(ctx context.Context, id model.PlayerID, connID model.ConnID) bool {
	player, err := c.storage.GetPlayer(ctx, id)
	if err != nil {
		if !errors.Is(err, model.ErrPlayerNotFound) {
			c.logger.Error("failed to load player",
				slog.String("player_id", string(id)),
				slog.String("error", err.Error()))
		}
		return false
	}
	if player.ConnID != connID {
		return false
	}

	if err := c.storage.DeletePlayer(ctx, id); err != nil {
		c.logger.Error("failed to remove player",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()))
		return false
	}
	return true
}

// broadcastState must be called with the lock held so frames reach every
// connection in the order the mutations happened
func (c *Controller) broadcastState(ctx context.Context) {
	players, err := c.storage.ListPlayers(ctx)
	if err != nil {
		c.logger.Error("failed to snapshot players", slog.String("error", err.Error()))
		return
	}
	c.broadcaster.BroadcastState(ctx, players)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, protocol.ErrMissingField):
		return "missing_field"
	case errors.Is(err, protocol.ErrInvalidField):
		return "invalid_field"
	default:
		return "malformed"
	}
}
