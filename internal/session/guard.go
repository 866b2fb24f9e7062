package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const guardWriteTimeout = 10 * time.Second

// OutboundGuard serializes writes to the client connection and tracks whether
// the connection is still usable. After the first failed write, or after
// MarkDead, every Send becomes a silent no-op so late producers such as
// enrichment tasks cannot write to a closed socket.
type OutboundGuard struct {
	mu    sync.Mutex
	conn  ClientConn
	alive bool
}

func NewOutboundGuard(conn ClientConn) *OutboundGuard {
	return &OutboundGuard{conn: conn, alive: true}
}

// Send marshals msg and writes it as a text frame. It reports whether the
// message reached the connection; false means the connection is dead or the
// write failed. A marshal failure is logged but does not poison the guard.
func (g *OutboundGuard) Send(ctx context.Context, msg any) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal outbound message", "error", err)
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.alive {
		return false
	}

	wctx, cancel := context.WithTimeout(ctx, guardWriteTimeout)
	defer cancel()
	if err := g.conn.Write(wctx, data); err != nil {
		slog.Warn("failed to write to client, suppressing further sends", "error", err)
		g.alive = false
		return false
	}
	return true
}

// MarkDead suppresses all future sends. Called when the client read loop
// observes a disconnect.
func (g *OutboundGuard) MarkDead() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.alive = false
}

func (g *OutboundGuard) Alive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.alive
}
