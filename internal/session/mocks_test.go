package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Edwinswanith/multiaudio/internal/enricher"
	"github.com/Edwinswanith/multiaudio/internal/repository"
	"github.com/Edwinswanith/multiaudio/internal/transcriber"
	"github.com/Edwinswanith/multiaudio/internal/webhook"
)

var errConnClosed = errors.New("connection closed")

type inboundFrame struct {
	binary bool
	data   []byte
}

// fakeConn scripts the client side of a session. Inbound frames are fed
// through a channel; closing the channel simulates a client disconnect.
type fakeConn struct {
	frames chan inboundFrame

	mu       sync.Mutex
	writes   [][]byte
	writeErr error
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{frames: make(chan inboundFrame, 16)}
}

func (c *fakeConn) Read(ctx context.Context) (bool, []byte, error) {
	select {
	case f, ok := <-c.frames:
		if !ok {
			return false, nil, errConnClosed
		}
		return f.binary, f.data, nil
	case <-ctx.Done():
		return false, nil, ctx.Err()
	}
}

func (c *fakeConn) Write(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.writes = append(c.writes, buf)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) setWriteErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

func (c *fakeConn) sentMessages() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.writes))
	for _, w := range c.writes {
		var m map[string]any
		if err := json.Unmarshal(w, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) messagesOfType(msgType string) []map[string]any {
	var out []map[string]any
	for _, m := range c.sentMessages() {
		if m["type"] == msgType {
			out = append(out, m)
		}
	}
	return out
}

type fakeStream struct {
	events chan transcriber.Event

	mu       sync.Mutex
	audio    [][]byte
	commits  int
	audioErr error

	closeOnce sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan transcriber.Event, 16)}
}

func (s *fakeStream) SendAudioChunk(_ context.Context, pcm []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audioErr != nil {
		return s.audioErr
	}
	buf := make([]byte, len(pcm))
	copy(buf, pcm)
	s.audio = append(s.audio, buf)
	return nil
}

func (s *fakeStream) SendCommit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	return nil
}

func (s *fakeStream) Events() <-chan transcriber.Event {
	return s.events
}

func (s *fakeStream) Close() error {
	s.closeOnce.Do(func() {
		close(s.events)
	})
	return nil
}

func (s *fakeStream) audioChunks() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.audio...)
}

func (s *fakeStream) commitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

type fakeTranscriber struct {
	stream     *fakeStream
	connectErr error

	mu       sync.Mutex
	connects int
}

func (f *fakeTranscriber) Connect(_ context.Context) (transcriber.Stream, error) {
	f.mu.Lock()
	f.connects++
	f.mu.Unlock()
	if f.connectErr != nil {
		return nil, f.connectErr
	}
	return f.stream, nil
}

func (f *fakeTranscriber) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

type enrichCall struct {
	text string
	mode enricher.Mode
	opts enricher.Options
}

type fakeEnricher struct {
	result enricher.Result

	mu    sync.Mutex
	calls []enrichCall
}

func (f *fakeEnricher) Process(_ context.Context, text string, mode enricher.Mode, opts enricher.Options) enricher.Result {
	f.mu.Lock()
	f.calls = append(f.calls, enrichCall{text: text, mode: mode, opts: opts})
	res := f.result
	f.mu.Unlock()
	res.RawTranscript = text
	return res
}

func (f *fakeEnricher) setResult(res enricher.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.result = res
}

func (f *fakeEnricher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeEnricher) lastCall() enrichCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakeRepository struct {
	mu          sync.Mutex
	sessions    []repository.CreateSessionInput
	completions []repository.CompleteSessionInput
	segments    []repository.InsertSegmentInput
	enrichments []repository.InsertEnrichmentInput
	createErr   error
}

func (r *fakeRepository) CreateSession(_ context.Context, input repository.CreateSessionInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.sessions = append(r.sessions, input)
	return nil
}

func (r *fakeRepository) CompleteSession(_ context.Context, input repository.CompleteSessionInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, input)
	return nil
}

func (r *fakeRepository) InsertSegment(_ context.Context, input repository.InsertSegmentInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.segments = append(r.segments, input)
	return nil
}

func (r *fakeRepository) InsertEnrichment(_ context.Context, input repository.InsertEnrichmentInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enrichments = append(r.enrichments, input)
	return nil
}

func (r *fakeRepository) ListSegmentsBySessionID(_ context.Context, _ string) ([]repository.TranscriptSegment, error) {
	return nil, nil
}

func (r *fakeRepository) segmentInputs() []repository.InsertSegmentInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repository.InsertSegmentInput(nil), r.segments...)
}

func (r *fakeRepository) completionInputs() []repository.CompleteSessionInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repository.CompleteSessionInput(nil), r.completions...)
}

type fakeWebhookSender struct {
	delivered chan webhook.TranscriptWebhookPayload
}

func newFakeWebhookSender() *fakeWebhookSender {
	return &fakeWebhookSender{delivered: make(chan webhook.TranscriptWebhookPayload, 4)}
}

func (f *fakeWebhookSender) SendTranscript(_ context.Context, payload webhook.TranscriptWebhookPayload) error {
	f.delivered <- payload
	return nil
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}
