package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Edwinswanith/multiaudio/internal/webhook"
)

func testPayload() webhook.TranscriptWebhookPayload {
	started := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	return webhook.TranscriptWebhookPayload{
		SessionID:    "sess-1",
		StartedAt:    started,
		EndedAt:      started.Add(2 * time.Minute),
		SegmentCount: 2,
		Transcript:   "hello world how are you",
	}
}

func TestSendTranscript_PostsJSON(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	sender := NewHTTPSender(srv.URL)
	if err := sender.SendTranscript(context.Background(), testPayload()); err != nil {
		t.Fatalf("SendTranscript: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	var decoded webhook.TranscriptWebhookPayload
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if decoded.SessionID != "sess-1" || decoded.SegmentCount != 2 || decoded.Transcript != "hello world how are you" {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestSendTranscript_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	sender := NewHTTPSender(srv.URL)
	if err := sender.SendTranscript(context.Background(), testPayload()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestSendTranscript_EmptyURLIsNoop(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendTranscript(context.Background(), testPayload()); err != nil {
		t.Fatalf("expected nil for unset webhook URL, got %v", err)
	}
}
