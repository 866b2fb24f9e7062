package httpserver

import (
	"context"

	"github.com/coder/websocket"

	"github.com/Edwinswanith/multiaudio/internal/session"
)

// clientConn adapts a coder/websocket connection to the session port. Binary
// frames are audio; everything outbound goes as text.
type clientConn struct {
	conn *websocket.Conn
}

func newClientConn(conn *websocket.Conn) session.ClientConn {
	return &clientConn{conn: conn}
}

func (c *clientConn) Read(ctx context.Context) (bool, []byte, error) {
	typ, data, err := c.conn.Read(ctx)
	if err != nil {
		return false, nil, err
	}
	return typ == websocket.MessageBinary, data, nil
}

func (c *clientConn) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *clientConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
