// Package transcriber provides an ElevenLabs-backed STT bridge using the
// Scribe realtime WebSocket API. It implements the transcriber.Transcriber
// interface.
package transcriber

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/coder/websocket"

	"github.com/Edwinswanith/multiaudio/internal/transcriber"
)

const defaultEndpoint = "wss://api.elevenlabs.io/v1/speech-to-text/realtime"

// Option is a functional option for configuring the ElevenLabs transcriber.
type Option func(*ElevenLabsTranscriber)

// WithBaseURL overrides the Scribe endpoint. Used by tests to point at a
// local fake server.
func WithBaseURL(baseURL string) Option {
	return func(t *ElevenLabsTranscriber) {
		t.baseURL = baseURL
	}
}

type ElevenLabsConfig struct {
	APIKey                  string
	ModelID                 string
	AudioFormat             string
	VADSilenceThresholdSecs float64
}

type ElevenLabsTranscriber struct {
	apiKey                  string
	modelID                 string
	audioFormat             string
	vadSilenceThresholdSecs float64
	baseURL                 string
}

func NewElevenLabsTranscriber(cfg ElevenLabsConfig, opts ...Option) transcriber.Transcriber {
	t := &ElevenLabsTranscriber{
		apiKey:                  cfg.APIKey,
		modelID:                 cfg.ModelID,
		audioFormat:             cfg.AudioFormat,
		vadSilenceThresholdSecs: cfg.VADSilenceThresholdSecs,
		baseURL:                 defaultEndpoint,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Connect opens a streaming transcription session. The returned error carries
// the provider's HTTP status when the handshake is rejected.
func (t *ElevenLabsTranscriber) Connect(ctx context.Context) (transcriber.Stream, error) {
	if t.apiKey == "" {
		return nil, errors.New("elevenlabs: api key is not configured")
	}

	wsURL, err := t.buildURL()
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build url: %w", err)
	}

	headers := http.Header{}
	headers.Set("xi-api-key", t.apiKey)

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		HTTPHeader: headers,
	})
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("elevenlabs: handshake rejected with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("elevenlabs: dial: %w", err)
	}

	s := &stream{
		conn:   conn,
		events: make(chan transcriber.Event, 64),
	}
	go s.readLoop()
	return s, nil
}

func (t *ElevenLabsTranscriber) buildURL() (string, error) {
	u, err := url.Parse(t.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("model_id", t.modelID)
	q.Set("audio_format", t.audioFormat)
	q.Set("include_language_detection", "true")
	q.Set("commit_strategy", "vad")
	q.Set("vad_silence_threshold_secs", strconv.FormatFloat(t.vadSilenceThresholdSecs, 'g', -1, 64))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ---- stream ----

// audioChunkMessage is the JSON frame sent to Scribe for audio and commits.
type audioChunkMessage struct {
	MessageType string `json:"message_type"`
	AudioBase64 string `json:"audio_base_64"`
	Commit      bool   `json:"commit,omitempty"`
}

// providerFrame is the lenient superset of the JSON frames Scribe sends back.
type providerFrame struct {
	MessageType  string `json:"message_type"`
	SessionID    string `json:"session_id"`
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
	Error        string `json:"error"`
}

type stream struct {
	connMu sync.Mutex
	conn   *websocket.Conn

	events chan transcriber.Event
	once   sync.Once
}

// SendAudioChunk base64-encodes the chunk and forwards it as an
// input_audio_chunk frame. Backpressure is bounded by the provider
// connection; a stalled provider surfaces as a later read failure.
func (s *stream) SendAudioChunk(ctx context.Context, pcm []byte) error {
	msg := audioChunkMessage{
		MessageType: "input_audio_chunk",
		AudioBase64: base64.StdEncoding.EncodeToString(pcm),
	}
	return s.writeJSON(ctx, msg)
}

// SendCommit asks the provider to force-finalize any pending partial
// transcript.
func (s *stream) SendCommit(ctx context.Context) error {
	msg := audioChunkMessage{
		MessageType: "input_audio_chunk",
		AudioBase64: "",
		Commit:      true,
	}
	return s.writeJSON(ctx, msg)
}

func (s *stream) writeJSON(ctx context.Context, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("elevenlabs: marshal frame: %w", err)
	}
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if err := s.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("elevenlabs: write frame: %w", err)
	}
	return nil
}

func (s *stream) Events() <-chan transcriber.Event {
	return s.events
}

// Close terminates the provider connection. The events channel closes once
// the read loop observes the closure.
func (s *stream) Close() error {
	s.once.Do(func() {
		_ = s.conn.Close(websocket.StatusNormalClosure, "session closed")
	})
	return nil
}

func (s *stream) readLoop() {
	defer close(s.events)
	for {
		_, data, err := s.conn.Read(context.Background())
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				slog.Debug("elevenlabs stream closed", "reason", err.Error())
			}
			return
		}
		ev, ok := classifyFrame(data)
		if !ok {
			continue
		}
		s.events <- ev
	}
}

// classifyFrame parses one provider frame into an Event. Non-JSON and
// unrecognized frames return false and are skipped.
func classifyFrame(data []byte) (transcriber.Event, bool) {
	var frame providerFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		slog.Warn("dropping non-JSON provider frame", "bytes", len(data))
		return transcriber.Event{}, false
	}

	switch frame.MessageType {
	case "session_started":
		return transcriber.Event{
			Type:      transcriber.EventSessionStarted,
			SessionID: frame.SessionID,
		}, true
	case "partial_transcript":
		return transcriber.Event{
			Type: transcriber.EventPartialTranscript,
			Text: frame.Text,
		}, true
	case "committed_transcript", "committed_transcript_with_timestamps":
		return transcriber.Event{
			Type:     transcriber.EventFinalTranscript,
			Text:     frame.Text,
			Language: frame.LanguageCode,
		}, true
	}

	if strings.Contains(frame.MessageType, "error") {
		msg := frame.Error
		if msg == "" {
			msg = "Unknown error"
		}
		return transcriber.Event{
			Type:    transcriber.EventError,
			Message: msg,
		}, true
	}

	slog.Debug("dropping unrecognized provider frame", "message_type", frame.MessageType)
	return transcriber.Event{}, false
}
