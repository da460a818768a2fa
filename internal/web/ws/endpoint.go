package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mcoot/geoshooter/internal/telemetry"
)

// Endpoint upgrades HTTP requests to game connections
type Endpoint struct {
	upgrader websocket.Upgrader
	handler  Handler
	cfg      ClientConfig
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewEndpoint creates an http.Handler that serves game connections
func NewEndpoint(handler Handler, cfg ClientConfig, metrics *telemetry.Metrics, logger *slog.Logger) *Endpoint {
	return &Endpoint{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Mobile browsers connect from whatever origin served the client page
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		handler: handler,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// ServeHTTP upgrades the request and serves the connection until it closes
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error response
		e.logger.Warn("websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	client := NewClient(conn, e.cfg, e.metrics, e.logger)
	e.logger.Info("websocket connected",
		slog.String("conn_id", string(client.ID())),
		slog.String("remote_addr", r.RemoteAddr))

	client.Run(r.Context(), e.handler)
}
