package ws

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/geoshooter/internal/model"
	"github.com/mcoot/geoshooter/internal/telemetry"
)

// ClientConfig holds per-connection transport settings
type ClientConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration
	// Time allowed between pongs before the peer is considered gone
	PongWait time.Duration
	// Time between pings; must be less than PongWait
	PingPeriod time.Duration
	// Largest inbound message accepted; larger ones close the connection
	ReadLimit int64
	// Soft capacity of the outbound queue
	OutboxCapacity int
}

// DefaultClientConfig returns transport settings suitable for mobile clients
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     50 * time.Second,
		ReadLimit:      64 * 1024,
		OutboxCapacity: DefaultOutboxCapacity,
	}
}

// Handler receives the lifecycle of a connection
type Handler interface {
	HandleConnect(ctx context.Context, conn Conn)
	HandleMessage(ctx context.Context, connID model.ConnID, data []byte)
	HandleClose(ctx context.Context, connID model.ConnID)
}

const closeReasonSlowConsumer = "slow consumer"

// Client is a Conn backed by a gorilla/websocket connection. A read pump
// feeds inbound messages to the Handler and a write pump drains the outbox.
type Client struct {
	id          model.ConnID
	conn        *websocket.Conn
	outbox      *Outbox
	cfg         ClientConfig
	metrics     *telemetry.Metrics
	logger      *slog.Logger
	connectedAt time.Time

	open      atomic.Bool
	closeOnce sync.Once
	closeCode int
	closeMsg  string
	done      chan struct{}
}

// NewClient wraps an upgraded websocket connection
func NewClient(conn *websocket.Conn, cfg ClientConfig, metrics *telemetry.Metrics, logger *slog.Logger) *Client {
	id := model.ConnID(uuid.NewString())
	c := &Client{
		id:          id,
		conn:        conn,
		outbox:      NewOutbox(cfg.OutboxCapacity),
		cfg:         cfg,
		metrics:     metrics,
		logger:      logger.With(slog.String("conn_id", string(id))),
		connectedAt: time.Now(),
		done:        make(chan struct{}),
	}
	c.open.Store(true)
	return c
}

func (c *Client) ID() model.ConnID {
	return c.id
}

func (c *Client) IsOpen() bool {
	return c.open.Load()
}

// Send queues a frame. A client whose queue overflows with events is closed.
func (c *Client) Send(frame Frame) error {
	dropped, err := c.outbox.Push(frame)
	c.metrics.FramesDropped(context.Background(), dropped)
	if errors.Is(err, model.ErrSlowConsumer) {
		c.logger.Warn("closing slow consumer", slog.Int("queued", c.outbox.Len()))
		c.closeWith(websocket.CloseTryAgainLater, closeReasonSlowConsumer)
	}
	return err
}

// Close sends a close frame with the given reason and tears the connection down
func (c *Client) Close(reason string) error {
	c.closeWith(websocket.CloseNormalClosure, reason)
	return nil
}

func (c *Client) closeWith(code int, reason string) {
	c.closeOnce.Do(func() {
		c.open.Store(false)
		c.outbox.Close()
		c.closeCode = code
		c.closeMsg = reason
		close(c.done)
	})
}

// Run serves the connection until either side closes it. The handler sees
// HandleConnect first and HandleClose exactly once, last.
func (c *Client) Run(ctx context.Context, h Handler) {
	h.HandleConnect(ctx, c)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump()
	}()

	c.readPump(ctx, h)
	c.closeWith(websocket.CloseNormalClosure, "")
	wg.Wait()

	c.logger.Info("connection closed",
		slog.Duration("connection_duration", time.Since(c.connectedAt)))
	h.HandleClose(ctx, c.id)
}

func (c *Client) readPump(ctx context.Context, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic in read pump",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	c.conn.SetReadLimit(c.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived) && c.IsOpen() {
				c.logger.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		h.HandleMessage(ctx, c.id, data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
		if r := recover(); r != nil {
			c.logger.Error("panic in write pump",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	for {
		select {
		case <-c.outbox.Ready():
			if err := c.flush(); err != nil {
				c.logger.Warn("websocket write failed", slog.String("error", err.Error()))
				c.closeWith(websocket.CloseAbnormalClosure, "")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.closeWith(websocket.CloseAbnormalClosure, "")
				return
			}

		case <-c.done:
			// Frames queued before the close still go out, best effort
			if c.closeCode != websocket.CloseAbnormalClosure {
				_ = c.flush()
				_ = c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(c.closeCode, c.closeMsg),
					time.Now().Add(c.cfg.WriteWait))
			}
			return
		}
	}
}

func (c *Client) flush() error {
	for _, frame := range c.outbox.Drain() {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame.Data); err != nil {
			return err
		}
	}
	return nil
}
