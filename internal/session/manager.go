package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Edwinswanith/multiaudio/internal/config"
	"github.com/Edwinswanith/multiaudio/internal/enricher"
	"github.com/Edwinswanith/multiaudio/internal/repository"
	"github.com/Edwinswanith/multiaudio/internal/transcriber"
	"github.com/Edwinswanith/multiaudio/internal/webhook"
)

const finalizeTimeout = 30 * time.Second

// Manager owns the set of live sessions. Each accepted client connection gets
// its own Orchestrator; when the session ends the manager finalizes it in the
// background so the websocket handler can return immediately.
type Manager struct {
	cfg     *config.Config
	stt     transcriber.Transcriber
	enr     enricher.Enricher
	repo    repository.Repository
	webhook webhook.Sender

	mu     sync.Mutex
	active map[string]*Orchestrator
}

func NewManager(
	cfg *config.Config,
	stt transcriber.Transcriber,
	enr enricher.Enricher,
	repo repository.Repository,
	sender webhook.Sender,
) *Manager {
	return &Manager{
		cfg:     cfg,
		stt:     stt,
		enr:     enr,
		repo:    repo,
		webhook: sender,
		active:  make(map[string]*Orchestrator),
	}
}

// HandleConnection runs a full session on the given client connection and
// blocks until it ends.
func (m *Manager) HandleConnection(ctx context.Context, conn ClientConn) {
	o := newOrchestrator(uuid.NewString(), conn, m.cfg, m.stt, m.enr, m.repo)

	m.mu.Lock()
	m.active[o.ID()] = o
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.active, o.ID())
		m.mu.Unlock()
	}()

	o.Run(ctx)

	go m.finalize(o)
}

// ActiveSessions reports how many sessions are currently running.
func (m *Manager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// finalize records the session end and delivers the accumulated transcript to
// the configured webhook. It runs after the client connection is gone, so
// failures are only logged.
func (m *Manager) finalize(o *Orchestrator) {
	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	endedAt := time.Now()
	reason := o.takeStopReasonSnapshot()

	if o.archived {
		err := m.repo.CompleteSession(ctx, repository.CompleteSessionInput{
			SessionID:  o.ID(),
			EndedAt:    endedAt,
			StopReason: reason,
		})
		if err != nil {
			slog.Error("failed to archive session end", "session_id", o.ID(), "error", err)
		}
	}

	transcript := strings.TrimSpace(o.acc.Transcript())
	if transcript == "" {
		return
	}

	payload := webhook.TranscriptWebhookPayload{
		SessionID:    o.ID(),
		StartedAt:    o.startedAt,
		EndedAt:      endedAt,
		SegmentCount: int(o.segmentSeq.Load()),
		Transcript:   transcript,
	}
	if err := m.webhook.SendTranscript(ctx, payload); err != nil {
		slog.Error("failed to deliver transcript webhook", "session_id", o.ID(), "error", err)
		return
	}
	slog.Info("session finalized", "session_id", o.ID(), "segments", payload.SegmentCount, "stop_reason", reason)
}
