package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Edwinswanith/multiaudio/internal/config"
	"github.com/Edwinswanith/multiaudio/internal/enricher"
	"github.com/Edwinswanith/multiaudio/internal/repository"
	"github.com/Edwinswanith/multiaudio/internal/transcriber"
)

const archiveWriteTimeout = 5 * time.Second

// Orchestrator runs one relay session: it bridges a single client connection
// to an STT provider stream, fans finalized segments out to enrichment, and
// tears everything down when either side goes away.
type Orchestrator struct {
	id   string
	conn ClientConn

	cfg      *config.Config
	stt      transcriber.Transcriber
	enricher enricher.Enricher
	repo     repository.Repository

	guard *OutboundGuard
	acc   *Accumulator

	startedAt  time.Time
	segmentSeq atomic.Int64
	archived   bool

	stopMu     sync.Mutex
	stopReason string

	enrichTasks sync.WaitGroup
}

func newOrchestrator(
	id string,
	conn ClientConn,
	cfg *config.Config,
	stt transcriber.Transcriber,
	enr enricher.Enricher,
	repo repository.Repository,
) *Orchestrator {
	return &Orchestrator{
		id:        id,
		conn:      conn,
		cfg:       cfg,
		stt:       stt,
		enricher:  enr,
		repo:      repo,
		guard:     NewOutboundGuard(conn),
		acc:       NewAccumulator(),
		startedAt: time.Now(),
	}
}

func (o *Orchestrator) ID() string {
	return o.id
}

// Run drives the session until the client disconnects or the provider stream
// ends. It always closes the client connection before returning. Enrichment
// tasks dispatched during the session may still be running when Run returns;
// their sends become no-ops once the guard is dead.
func (o *Orchestrator) Run(ctx context.Context) {
	defer func() {
		_ = o.conn.Close()
	}()

	slog.Info("client session opened", "session_id", o.id)

	if o.cfg.ElevenLabsAPIKey == "" {
		slog.Error("rejecting session, ELEVENLABS_API_KEY is not set", "session_id", o.id)
		o.guard.Send(ctx, newErrorMessage("ElevenLabs API key not configured"))
		o.setStopReason("stt not configured")
		return
	}

	stream, err := o.stt.Connect(ctx)
	if err != nil {
		slog.Error("failed to connect to stt provider", "session_id", o.id, "error", err)
		o.guard.Send(ctx, newErrorMessage("Failed to connect to ElevenLabs: "+err.Error()))
		o.setStopReason("stt connect failure")
		return
	}
	slog.Info("connected to stt provider", "session_id", o.id)

	if !o.guard.Send(ctx, newConnectedMessage()) {
		slog.Info("client disconnected during setup", "session_id", o.id)
		o.setStopReason("client disconnected")
		_ = stream.Close()
		return
	}

	o.createArchiveSession()

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Closing the stream on cancellation unblocks both loops: the provider
	// read fails and its events channel closes, and in-flight sends to the
	// provider error out.
	go func() {
		<-sessCtx.Done()
		_ = stream.Close()
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		o.clientLoop(sessCtx, stream)
	}()
	go func() {
		defer wg.Done()
		defer cancel()
		o.providerLoop(sessCtx, stream)
	}()
	wg.Wait()

	slog.Info("session loops finished",
		"session_id", o.id,
		"segments", o.segmentSeq.Load(),
		"stop_reason", o.takeStopReasonSnapshot(),
	)
}

// clientLoop reads frames from the client until disconnect or cancellation.
// Binary frames are forwarded to the provider as audio; text frames are
// control messages.
func (o *Orchestrator) clientLoop(ctx context.Context, stream transcriber.Stream) {
	chunks := 0
	for {
		binary, data, err := o.conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Info("client disconnected", "session_id", o.id, "chunks_forwarded", chunks)
				o.guard.MarkDead()
				o.setStopReason("client disconnected")
			}
			return
		}

		if binary {
			if err := stream.SendAudioChunk(ctx, data); err != nil {
				if ctx.Err() == nil {
					slog.Error("failed to forward audio to stt provider", "session_id", o.id, "error", err)
					o.setStopReason("stt write failure")
				}
				return
			}
			chunks++
			continue
		}

		o.handleControl(ctx, stream, data)
	}
}

func (o *Orchestrator) handleControl(ctx context.Context, stream transcriber.Stream, data []byte) {
	var msg controlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Debug("ignoring malformed control frame", "session_id", o.id)
		return
	}

	switch msg.Type {
	case "stop":
		slog.Info("stop requested, committing pending audio", "session_id", o.id)
		if err := stream.SendCommit(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("failed to send commit to stt provider", "session_id", o.id, "error", err)
		}
	case "set_mode":
		mode := enricher.ParseMode(msg.Mode)
		o.acc.SetMode(mode)
		slog.Info("processing mode changed", "session_id", o.id, "mode", string(mode))
	case "clear":
		o.acc.Clear()
		slog.Info("accumulated transcript cleared", "session_id", o.id)
	default:
		slog.Debug("ignoring unknown control type", "session_id", o.id, "control_type", msg.Type)
	}
}

// providerLoop consumes provider events until the events channel closes.
// After cancellation it keeps draining so the provider's read loop can exit,
// but stops acting on events.
func (o *Orchestrator) providerLoop(ctx context.Context, stream transcriber.Stream) {
	for ev := range stream.Events() {
		if ctx.Err() != nil {
			continue
		}

		switch ev.Type {
		case transcriber.EventSessionStarted:
			slog.Info("stt session started", "session_id", o.id, "provider_session_id", ev.SessionID)
			o.guard.Send(ctx, newSessionStartedMessage(ev.SessionID))
		case transcriber.EventPartialTranscript:
			if ev.Text != "" {
				o.guard.Send(ctx, newPartialTranscriptMessage(ev.Text))
			}
		case transcriber.EventFinalTranscript:
			o.handleFinalTranscript(ctx, ev)
		case transcriber.EventError:
			slog.Error("stt provider reported error", "session_id", o.id, "message", ev.Message)
			o.guard.Send(ctx, newErrorMessage(ev.Message))
		}
	}

	if ctx.Err() == nil {
		slog.Info("stt provider stream ended", "session_id", o.id)
		o.setStopReason("stt stream ended")
	}
}

func (o *Orchestrator) handleFinalTranscript(ctx context.Context, ev transcriber.Event) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	seq := int(o.segmentSeq.Add(1))
	slog.Info("final transcript received", "session_id", o.id, "segment", seq, "length", len(text))

	o.guard.Send(ctx, newFinalTranscriptMessage(seq, text, ev.Language))
	o.acc.AppendFinal(text)
	o.archiveSegment(seq, text, ev.Language)
	o.dispatchEnrichment(seq, text)
}

// dispatchEnrichment runs one enrichment task in the background. The task is
// deliberately detached from the session context: a session ending mid-task
// silences its output through the guard rather than aborting the work.
func (o *Orchestrator) dispatchEnrichment(seq int, text string) {
	mode := o.acc.Mode()
	turns := o.acc.RecentTurns()

	o.enrichTasks.Add(1)
	go func() {
		defer o.enrichTasks.Done()
		ctx := context.Background()

		o.guard.Send(ctx, newProcessingMessage())
		result := o.enricher.Process(ctx, text, mode, enricher.Options{PreviousTurns: turns})
		o.guard.Send(ctx, newGeminiResultMessage(seq, text, result))

		if result.Err == "" {
			o.acc.RecordTurn(text, result.CleanedMeaning)
		}
		o.archiveEnrichment(seq, text, result)
	}()
}

func (o *Orchestrator) createArchiveSession() {
	ctx, cancel := context.WithTimeout(context.Background(), archiveWriteTimeout)
	defer cancel()
	err := o.repo.CreateSession(ctx, repository.CreateSessionInput{
		SessionID: o.id,
		StartedAt: o.startedAt,
	})
	if err != nil {
		slog.Error("failed to archive session start", "session_id", o.id, "error", err)
		return
	}
	o.archived = true
}

func (o *Orchestrator) archiveSegment(seq int, text, language string) {
	if !o.archived {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveWriteTimeout)
	defer cancel()
	err := o.repo.InsertSegment(ctx, repository.InsertSegmentInput{
		SessionID:    o.id,
		SegmentIndex: seq,
		Content:      text,
		Language:     language,
	})
	if err != nil {
		slog.Error("failed to archive transcript segment", "session_id", o.id, "segment", seq, "error", err)
	}
}

func (o *Orchestrator) archiveEnrichment(seq int, text string, result enricher.Result) {
	if !o.archived {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), archiveWriteTimeout)
	defer cancel()
	err := o.repo.InsertEnrichment(ctx, repository.InsertEnrichmentInput{
		SessionID:      o.id,
		SegmentIndex:   seq,
		RawText:        text,
		CleanedMeaning: result.CleanedMeaning,
		PromptReady:    result.PromptReady,
		RiskLevel:      string(result.MeaningChangeRisk),
		Confidence:     result.Confidence,
		Error:          result.Err,
	})
	if err != nil {
		slog.Error("failed to archive enrichment", "session_id", o.id, "segment", seq, "error", err)
	}
}

func (o *Orchestrator) setStopReason(reason string) {
	o.stopMu.Lock()
	defer o.stopMu.Unlock()
	if o.stopReason == "" {
		o.stopReason = reason
	}
}

func (o *Orchestrator) takeStopReasonSnapshot() string {
	o.stopMu.Lock()
	defer o.stopMu.Unlock()
	if o.stopReason == "" {
		return "unknown"
	}
	return o.stopReason
}
