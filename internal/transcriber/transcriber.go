package transcriber

import "context"

type EventType string

const (
	EventSessionStarted  EventType = "session_started"
	EventPartialTranscript EventType = "partial_transcript"
	EventFinalTranscript EventType = "final_transcript"
	EventError           EventType = "error"
)

// Event is one classified message from the STT provider. Unrecognized or
// malformed provider frames never surface as events.
type Event struct {
	Type      EventType
	SessionID string
	Text      string
	Language  string
	Message   string
}

// Stream is one live provider connection. Events closes when the provider
// connection ends; a new stream must be connected for a new sequence.
type Stream interface {
	SendAudioChunk(ctx context.Context, pcm []byte) error
	SendCommit(ctx context.Context) error
	Events() <-chan Event
	Close() error
}

type Transcriber interface {
	Connect(ctx context.Context) (Stream, error)
}
