package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Edwinswanith/multiaudio/internal/config"
	"github.com/Edwinswanith/multiaudio/internal/repository"
	"github.com/Edwinswanith/multiaudio/internal/session"
)

// maxAudioFrameBytes bounds inbound websocket frames. Clients send raw PCM
// chunks well under this.
const maxAudioFrameBytes = 1 << 20

type Server struct {
	cfg        *config.Config
	manager    *session.Manager
	repo       repository.Repository
	httpServer *http.Server
}

func NewServer(cfg *config.Config, manager *session.Manager, repo repository.Repository) *Server {
	s := &Server{cfg: cfg, manager: manager, repo: repo}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/ws/transcribe", s.handleTranscribe)
	r.Get("/sessions/{sessionID}/segments", s.handleSessionSegments)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe() error {
	slog.Info("http server listening", "addr", s.cfg.ListenAddr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

type healthResponse struct {
	Status               string `json:"status"`
	ElevenLabsConfigured bool   `json:"elevenlabs_configured"`
	GeminiConfigured     bool   `json:"gemini_configured"`
	ActiveSessions       int    `json:"active_sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:               "ok",
		ElevenLabsConfigured: s.cfg.ElevenLabsAPIKey != "",
		GeminiConfigured:     s.cfg.GeminiAPIKey != "",
		ActiveSessions:       s.manager.ActiveSessions(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to write health response", "error", err)
	}
}

type segmentResponse struct {
	SegmentIndex int    `json:"segment_index"`
	Content      string `json:"content"`
	Language     string `json:"language,omitempty"`
}

type sessionSegmentsResponse struct {
	SessionID string            `json:"session_id"`
	Segments  []segmentResponse `json:"segments"`
}

// handleSessionSegments serves the archived transcript segments of a finished
// session. Sessions that were never archived yield an empty list.
func (s *Server) handleSessionSegments(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	segments, err := s.repo.ListSegmentsBySessionID(r.Context(), sessionID)
	if err != nil {
		slog.Error("failed to load archived segments", "session_id", sessionID, "error", err)
		http.Error(w, "failed to load segments", http.StatusInternalServerError)
		return
	}

	resp := sessionSegmentsResponse{
		SessionID: sessionID,
		Segments:  make([]segmentResponse, 0, len(segments)),
	}
	for _, seg := range segments {
		resp.Segments = append(resp.Segments, segmentResponse{
			SegmentIndex: seg.SegmentIndex,
			Content:      seg.Content,
			Language:     seg.Language,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to write segments response", "error", err)
	}
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxAudioFrameBytes)

	s.manager.HandleConnection(r.Context(), newClientConn(conn))
}
