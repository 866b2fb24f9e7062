// Package enricher provides the Gemini-backed meaning-normalization client.
// It asks the model for structured JSON output matching a fixed schema and
// resolves every failure to a local fallback result.
package enricher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Edwinswanith/multiaudio/internal/enricher"
)

const (
	maxPreviousTurns = 3

	strictSystemPrompt = `You are a transcription cleaner and prompt composer. Your job is to:
1. Clean speech transcriptions while STRICTLY preserving meaning
2. Translate Tamil/Hindi/Tunglish to English without losing ANY nuance
3. Convert the cleaned text into a structured prompt format

STRICT RULES - NEVER VIOLATE:
- NEVER change numbers (42 stays 42, not "forty-two" or "around forty")
- NEVER change URLs, file paths, or code tokens
- NEVER change proper nouns, names, or technical terms
- NEVER add information that wasn't in the original
- NEVER remove information that was clearly intentional
- Only remove: "um", "uh", "like", "you know", hesitations, false starts, repetitions

For Tunglish (Tamil-English mix): Translate the Tamil parts to English while keeping English parts intact.
For pure Tamil/Hindi: Translate to natural English while preserving the exact meaning.

If translation is ambiguous, set meaning_change_risk to "high" and provide the most literal interpretation.

IMPORTANT: Respond ONLY with valid JSON matching the schema provided. No markdown, no extra text.`

	balancedSystemPrompt = `You are a transcription cleaner and prompt composer. Your job is to:
1. Clean speech transcriptions while preserving core meaning
2. Translate Tamil/Hindi/Tunglish to clear, natural English
3. Convert the cleaned text into a well-structured prompt format

RULES:
- NEVER change numbers, URLs, file paths, code tokens, proper nouns
- Remove fillers, hesitations, false starts, repetitions
- Improve clarity and structure while keeping the intent
- For prompts: add appropriate structure (bullet points, sections) if it improves clarity

For Tunglish (Tamil-English mix): Translate naturally, combining Tamil and English parts into fluent English.
For pure Tamil/Hindi: Translate to natural, idiomatic English.

Balance natural expression with faithfulness to the original intent.

IMPORTANT: Respond ONLY with valid JSON matching the schema provided. No markdown, no extra text.`
)

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

type GeminiEnricher struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiEnricher builds the client. An empty API key is not an error:
// the enricher then resolves every call to a fallback result.
func NewGeminiEnricher(ctx context.Context, cfg GeminiConfig) (enricher.Enricher, error) {
	g := &GeminiEnricher{
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
	if cfg.APIKey == "" {
		slog.Warn("gemini api key not configured; enrichment will return fallback results")
		return g, nil
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	g.client = client
	return g, nil
}

// Process sends the transcript to Gemini and decodes the structured output.
// It never returns an error; failures resolve to enricher.Fallback.
func (g *GeminiEnricher) Process(ctx context.Context, text string, mode enricher.Mode, opts enricher.Options) enricher.Result {
	if g.client == nil {
		return enricher.Fallback(text, "Gemini API key not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt(mode))},
	}
	model.SetTemperature(0.2)
	model.SetTopP(0.8)
	model.SetTopK(40)
	model.SetMaxOutputTokens(2048)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = resultSchema()

	resp, err := model.GenerateContent(ctx, genai.Text(buildUserPrompt(text, opts)))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Error("gemini request timed out", "timeout", g.timeout)
			return enricher.Fallback(text, "Gemini API timeout")
		}
		slog.Error("gemini request failed", "error", err)
		return enricher.Fallback(text, fmt.Sprintf("Gemini API error: %v", err))
	}

	raw := firstText(resp)
	if raw == "" {
		slog.Error("gemini returned no content")
		return enricher.Fallback(text, "Empty response from Gemini")
	}

	result, err := decodeResult([]byte(raw), text)
	if err != nil {
		slog.Error("gemini returned unusable output", "error", err)
		return enricher.Fallback(text, "Invalid JSON from Gemini")
	}
	return result
}

func systemPrompt(mode enricher.Mode) string {
	if mode == enricher.ModeStrict {
		return strictSystemPrompt
	}
	return balancedSystemPrompt
}

// buildUserPrompt composes the user turn: optional session context, the last
// few prior utterances for continuity, then the transcript itself.
func buildUserPrompt(text string, opts enricher.Options) string {
	var b strings.Builder
	if opts.Context != "" {
		fmt.Fprintf(&b, "Session context: %s\n\n", opts.Context)
	}
	if len(opts.PreviousTurns) > 0 {
		turns := opts.PreviousTurns
		if len(turns) > maxPreviousTurns {
			turns = turns[len(turns)-maxPreviousTurns:]
		}
		b.WriteString("Previous utterances:\n")
		for _, turn := range turns {
			fmt.Fprintf(&b, "Previous: %s -> %s\n", turn.Raw, turn.Cleaned)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Process this transcript and return JSON:\n\n%s", text)
	return b.String()
}

// resultSchema is the structured-output contract sent with every request.
func resultSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"detected_languages": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Languages detected in input (english, tamil, hindi, tunglish)",
			},
			"raw_transcript": {
				Type:        genai.TypeString,
				Description: "Original transcript exactly as provided",
			},
			"cleaned_english_meaning": {
				Type:        genai.TypeString,
				Description: "Cleaned English preserving exact meaning with minimal edits",
			},
			"prompt_ready_english": {
				Type:        genai.TypeString,
				Description: "Structured English formatted for LLM prompt use",
			},
			"removed_fillers": {
				Type:        genai.TypeBoolean,
				Description: "Whether filler words were removed",
			},
			"meaning_change_risk": {
				Type:        genai.TypeString,
				Enum:        []string{"low", "medium", "high"},
				Description: "Risk that cleaning altered the intended meaning",
			},
			"entities": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"text": {Type: genai.TypeString},
						"type": {Type: genai.TypeString},
					},
					Required: []string{"text", "type"},
				},
				Description: "Key entities (names, numbers, URLs, code) that must not be changed",
			},
			"confidence_score": {
				Type:        genai.TypeNumber,
				Description: "Confidence in translation/cleanup accuracy (0-1)",
			},
		},
		Required: []string{
			"detected_languages",
			"raw_transcript",
			"cleaned_english_meaning",
			"prompt_ready_english",
			"meaning_change_risk",
			"entities",
			"confidence_score",
		},
	}
}

func firstText(resp *genai.GenerateContentResponse) string {
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

// wireResult mirrors the response schema.
type wireResult struct {
	DetectedLanguages []string          `json:"detected_languages"`
	RawTranscript     string            `json:"raw_transcript"`
	CleanedMeaning    string            `json:"cleaned_english_meaning"`
	PromptReady       string            `json:"prompt_ready_english"`
	RemovedFillers    bool              `json:"removed_fillers"`
	MeaningChangeRisk string            `json:"meaning_change_risk"`
	Entities          []enricher.Entity `json:"entities"`
	Confidence        float64           `json:"confidence_score"`
}

// decodeResult parses the model output and enforces the schema. The original
// transcript always overwrites the model's echo of it.
func decodeResult(data []byte, originalText string) (enricher.Result, error) {
	var wire wireResult
	if err := json.Unmarshal(data, &wire); err != nil {
		return enricher.Result{}, fmt.Errorf("unmarshal output: %w", err)
	}

	risk := enricher.RiskLevel(wire.MeaningChangeRisk)
	switch risk {
	case enricher.RiskLow, enricher.RiskMedium, enricher.RiskHigh:
	default:
		return enricher.Result{}, fmt.Errorf("invalid meaning_change_risk %q", wire.MeaningChangeRisk)
	}
	if wire.Confidence < 0 || wire.Confidence > 1 {
		return enricher.Result{}, fmt.Errorf("confidence_score %g out of range", wire.Confidence)
	}

	entities := wire.Entities
	if entities == nil {
		entities = []enricher.Entity{}
	}
	languages := wire.DetectedLanguages
	if languages == nil {
		languages = []string{}
	}

	return enricher.Result{
		DetectedLanguages: languages,
		RawTranscript:     originalText,
		CleanedMeaning:    wire.CleanedMeaning,
		PromptReady:       wire.PromptReady,
		RemovedFillers:    wire.RemovedFillers,
		MeaningChangeRisk: risk,
		Entities:          entities,
		Confidence:        wire.Confidence,
	}, nil
}
