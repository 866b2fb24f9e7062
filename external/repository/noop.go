package repository

import (
	"context"

	"github.com/Edwinswanith/multiaudio/internal/repository"
)

// NoopRepository is used when no DATABASE_URL is configured: sessions run
// without an archive.
type NoopRepository struct{}

func NewNoopRepository() repository.Repository {
	return &NoopRepository{}
}

func (r *NoopRepository) CreateSession(context.Context, repository.CreateSessionInput) error {
	return nil
}

func (r *NoopRepository) CompleteSession(context.Context, repository.CompleteSessionInput) error {
	return nil
}

func (r *NoopRepository) InsertSegment(context.Context, repository.InsertSegmentInput) error {
	return nil
}

func (r *NoopRepository) InsertEnrichment(context.Context, repository.InsertEnrichmentInput) error {
	return nil
}

func (r *NoopRepository) ListSegmentsBySessionID(context.Context, string) ([]repository.TranscriptSegment, error) {
	return nil, nil
}
