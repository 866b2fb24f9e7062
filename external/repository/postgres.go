package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Edwinswanith/multiaudio/internal/repository"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) CreateSession(ctx context.Context, input repository.CreateSessionInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, started_at, status)
		 VALUES ($1, $2, 'running')`,
		input.SessionID, input.StartedAt)
	return err
}

func (r *PostgresRepository) CompleteSession(ctx context.Context, input repository.CompleteSessionInput) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET status = 'completed', ended_at = $2, stop_reason = $3 WHERE id = $1`,
		input.SessionID, input.EndedAt, input.StopReason)
	return err
}

func (r *PostgresRepository) InsertSegment(ctx context.Context, input repository.InsertSegmentInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO transcript_segments (session_id, segment_index, content, language)
		 VALUES ($1, $2, $3, $4)`,
		input.SessionID, input.SegmentIndex, input.Content, input.Language)
	return err
}

func (r *PostgresRepository) InsertEnrichment(ctx context.Context, input repository.InsertEnrichmentInput) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO enrichments (session_id, segment_index, raw_text, cleaned_meaning, prompt_ready, risk_level, confidence, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		input.SessionID, input.SegmentIndex, input.RawText, input.CleanedMeaning,
		input.PromptReady, input.RiskLevel, input.Confidence, input.Error)
	return err
}

func (r *PostgresRepository) ListSegmentsBySessionID(ctx context.Context, sessionID string) ([]repository.TranscriptSegment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, segment_index, content, language, created_at
		 FROM transcript_segments WHERE session_id = $1 ORDER BY segment_index ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []repository.TranscriptSegment
	for rows.Next() {
		var seg repository.TranscriptSegment
		if err := rows.Scan(&seg.ID, &seg.SessionID, &seg.SegmentIndex, &seg.Content, &seg.Language, &seg.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, seg)
	}
	return list, rows.Err()
}
