package session

import "github.com/Edwinswanith/multiaudio/internal/enricher"

// Outbound message kinds, discriminated by the "type" field. Each message is
// self-contained; ordering across the client and provider loops is not
// guaranteed.

type connectedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newConnectedMessage() connectedMessage {
	return connectedMessage{Type: "connected", Message: "Connected to ElevenLabs STT"}
}

type sessionStartedMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func newSessionStartedMessage(sessionID string) sessionStartedMessage {
	return sessionStartedMessage{Type: "session_started", SessionID: sessionID}
}

type transcriptMessage struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	IsFinal  bool   `json:"is_final"`
	Language string `json:"language,omitempty"`
	// Segment is the monotonic finalization sequence number, starting at 1.
	// Only final transcripts carry one; it lets clients pair enrichment
	// results that arrive out of finalization order.
	Segment int `json:"segment,omitempty"`
}

func newPartialTranscriptMessage(text string) transcriptMessage {
	return transcriptMessage{Type: "transcript", Text: text, IsFinal: false}
}

func newFinalTranscriptMessage(segment int, text, language string) transcriptMessage {
	return transcriptMessage{
		Type:     "transcript",
		Text:     text,
		IsFinal:  true,
		Language: language,
		Segment:  segment,
	}
}

type processingMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newProcessingMessage() processingMessage {
	return processingMessage{Type: "processing", Message: "Processing with Gemini..."}
}

type geminiResultMessage struct {
	Type              string            `json:"type"`
	RawTranscript     string            `json:"raw_transcript"`
	CleanedMeaning    string            `json:"cleaned_meaning"`
	PromptReady       string            `json:"prompt_ready"`
	DetectedLanguages []string          `json:"detected_languages"`
	RiskLevel         string            `json:"risk_level"`
	Entities          []enricher.Entity `json:"entities"`
	Confidence        float64           `json:"confidence"`
	Error             string            `json:"error,omitempty"`
	Segment           int               `json:"segment"`
}

// newGeminiResultMessage projects an enrichment result for the client,
// substituting the original segment text for any missing cleaned/prompt
// field.
func newGeminiResultMessage(segment int, originalText string, res enricher.Result) geminiResultMessage {
	raw := res.RawTranscript
	if raw == "" {
		raw = originalText
	}
	cleaned := res.CleanedMeaning
	if cleaned == "" {
		cleaned = originalText
	}
	promptReady := res.PromptReady
	if promptReady == "" {
		promptReady = originalText
	}
	languages := res.DetectedLanguages
	if languages == nil {
		languages = []string{}
	}
	entities := res.Entities
	if entities == nil {
		entities = []enricher.Entity{}
	}
	return geminiResultMessage{
		Type:              "gemini_result",
		RawTranscript:     raw,
		CleanedMeaning:    cleaned,
		PromptReady:       promptReady,
		DetectedLanguages: languages,
		RiskLevel:         string(res.MeaningChangeRisk),
		Entities:          entities,
		Confidence:        res.Confidence,
		Error:             res.Err,
		Segment:           segment,
	}
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newErrorMessage(message string) errorMessage {
	return errorMessage{Type: "error", Message: message}
}

// controlMessage is the inbound client control frame shape.
type controlMessage struct {
	Type string `json:"type"`
	Mode string `json:"mode"`
}
