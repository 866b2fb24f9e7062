package session

import (
	"context"
	"testing"
	"time"

	"github.com/Edwinswanith/multiaudio/internal/transcriber"
)

func TestManager_FinalizesSessionWithWebhook(t *testing.T) {
	conn := newFakeConn()
	stream := newFakeStream()
	stt := &fakeTranscriber{stream: stream}
	enr := &fakeEnricher{}
	repo := &fakeRepository{}
	sender := newFakeWebhookSender()

	m := NewManager(testConfig(), stt, enr, repo, sender)

	done := make(chan struct{})
	go func() {
		m.HandleConnection(context.Background(), conn)
		close(done)
	}()

	waitFor(t, func() bool { return m.ActiveSessions() == 1 }, "session registration")

	stream.events <- transcriber.Event{Type: transcriber.EventFinalTranscript, Text: "hello"}
	stream.events <- transcriber.Event{Type: transcriber.EventFinalTranscript, Text: "world"}
	waitFor(t, func() bool { return len(conn.messagesOfType("gemini_result")) == 2 }, "enrichment results")

	close(conn.frames)
	<-done
	if m.ActiveSessions() != 0 {
		t.Errorf("active sessions after end = %d", m.ActiveSessions())
	}

	select {
	case payload := <-sender.delivered:
		if payload.Transcript != "hello world" {
			t.Errorf("webhook transcript = %q", payload.Transcript)
		}
		if payload.SegmentCount != 2 {
			t.Errorf("webhook segment count = %d", payload.SegmentCount)
		}
		if payload.SessionID == "" {
			t.Error("webhook payload missing session id")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("webhook delivery timed out")
	}

	waitFor(t, func() bool { return len(repo.completionInputs()) == 1 }, "session completion archive")
	if repo.completionInputs()[0].StopReason != "client disconnected" {
		t.Errorf("stop reason = %q", repo.completionInputs()[0].StopReason)
	}
}

func TestManager_EmptyTranscriptSkipsWebhook(t *testing.T) {
	conn := newFakeConn()
	stream := newFakeStream()
	stt := &fakeTranscriber{stream: stream}
	sender := newFakeWebhookSender()
	repo := &fakeRepository{}

	m := NewManager(testConfig(), stt, &fakeEnricher{}, repo, sender)

	done := make(chan struct{})
	go func() {
		m.HandleConnection(context.Background(), conn)
		close(done)
	}()
	waitFor(t, func() bool { return len(conn.messagesOfType("connected")) == 1 }, "connected message")
	close(conn.frames)
	<-done

	waitFor(t, func() bool { return len(repo.completionInputs()) == 1 }, "session completion archive")
	select {
	case <-sender.delivered:
		t.Fatal("webhook delivered despite empty transcript")
	default:
	}
}
