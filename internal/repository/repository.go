package repository

import (
	"context"
	"time"
)

type CreateSessionInput struct {
	SessionID string
	StartedAt time.Time
}

type CompleteSessionInput struct {
	SessionID  string
	EndedAt    time.Time
	StopReason string
}

type InsertSegmentInput struct {
	SessionID    string
	SegmentIndex int
	Content      string
	Language     string
}

type InsertEnrichmentInput struct {
	SessionID      string
	SegmentIndex   int
	RawText        string
	CleanedMeaning string
	PromptReady    string
	RiskLevel      string
	Confidence     float64
	Error          string
}

// Repository archives finished transcription work. Archive writes never
// gate live session delivery; callers log failures and move on.
type Repository interface {
	CreateSession(ctx context.Context, input CreateSessionInput) error
	CompleteSession(ctx context.Context, input CompleteSessionInput) error
	InsertSegment(ctx context.Context, input InsertSegmentInput) error
	InsertEnrichment(ctx context.Context, input InsertEnrichmentInput) error
	ListSegmentsBySessionID(ctx context.Context, sessionID string) ([]TranscriptSegment, error)
}
