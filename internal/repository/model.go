package repository

import "time"

type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
)

type Session struct {
	ID         string
	StartedAt  time.Time
	EndedAt    *time.Time
	Status     SessionStatus
	StopReason string
}

type TranscriptSegment struct {
	ID           string
	SessionID    string
	SegmentIndex int
	Content      string
	Language     string
	CreatedAt    time.Time
}

type Enrichment struct {
	ID             string
	SessionID      string
	SegmentIndex   int
	RawText        string
	CleanedMeaning string
	PromptReady    string
	RiskLevel      string
	Confidence     float64
	Error          string
	CreatedAt      time.Time
}
