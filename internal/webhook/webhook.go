package webhook

import (
	"context"
	"time"
)

type TranscriptWebhookPayload struct {
	SessionID    string    `json:"session_id"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	SegmentCount int       `json:"segment_count"`
	Transcript   string    `json:"transcript"`
}

type Sender interface {
	SendTranscript(ctx context.Context, payload TranscriptWebhookPayload) error
}
