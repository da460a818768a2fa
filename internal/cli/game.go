package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/geoshooter/internal/protocol"
)

const writeWait = 10 * time.Second

// gameConn is a client-side connection to the game endpoint
type gameConn struct {
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

func dialGame(ctx context.Context) (*gameConn, error) {
	gameURL, err := cfg.GameURL()
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, gameURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			return nil, fmt.Errorf("connecting to %s: HTTP %d", gameURL, resp.StatusCode)
		}
		return nil, fmt.Errorf("connecting to %s: %w", gameURL, err)
	}
	return &gameConn{conn: conn, done: make(chan struct{})}, nil
}

// send writes one client message
func (g *gameConn) send(msg protocol.Message) error {
	data, err := protocol.EncodeClient(msg)
	if err != nil {
		return err
	}
	if err := g.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return g.conn.WriteMessage(websocket.TextMessage, data)
}

// readFrames decodes server frames onto the returned channel until the
// connection fails. The error channel receives exactly one value.
func (g *gameConn) readFrames() (<-chan protocol.ServerFrame, <-chan error) {
	frames := make(chan protocol.ServerFrame)
	errs := make(chan error, 1)

	go func() {
		defer close(frames)
		for {
			_, data, err := g.conn.ReadMessage()
			if err != nil {
				errs <- err
				return
			}
			frame, err := protocol.DecodeServer(data)
			if err != nil {
				// Unknown frames from a newer server are skipped
				continue
			}
			select {
			case frames <- frame:
			case <-g.done:
				return
			}
		}
	}()

	return frames, errs
}

// close performs the closing handshake, then drops the connection
func (g *gameConn) close() error {
	g.closeOnce.Do(func() { close(g.done) })
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = g.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return g.conn.Close()
}

// isNormalClose reports whether err ends a stream without being a failure
func isNormalClose(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
	}
	return false
}
