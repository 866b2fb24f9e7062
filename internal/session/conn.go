package session

import "context"

// ClientConn is the session's view of the client websocket. Read blocks until
// the next frame, a transport failure, or context cancellation; binary frames
// carry audio, text frames carry JSON control messages.
type ClientConn interface {
	Read(ctx context.Context) (binary bool, data []byte, err error)
	Write(ctx context.Context, data []byte) error
	Close() error
}
