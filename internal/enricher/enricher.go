// Package enricher defines the meaning-normalization contract: given a raw
// transcript segment, produce cleaned and prompt-ready English plus metadata
// about how risky the cleanup was. Implementations never fail; every failure
// path resolves to a fallback Result so downstream consumers always have a
// usable value.
package enricher

import "context"

type Mode string

const (
	ModeStrict   Mode = "strict"
	ModeBalanced Mode = "balanced"
)

// ParseMode maps a client-supplied mode string. Only the literal "strict"
// selects strict mode; everything else is balanced.
func ParseMode(s string) Mode {
	if s == string(ModeStrict) {
		return ModeStrict
	}
	return ModeBalanced
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Entity is a span the cleanup must not alter (names, numbers, URLs, code).
type Entity struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

// Turn is one prior raw/cleaned utterance pair, passed for continuity.
type Turn struct {
	Raw     string
	Cleaned string
}

type Options struct {
	Context       string
	PreviousTurns []Turn
}

// Result is the enrichment output. RawTranscript always equals the exact
// input text, regardless of what the upstream service echoed back.
type Result struct {
	DetectedLanguages []string
	RawTranscript     string
	CleanedMeaning    string
	PromptReady       string
	RemovedFillers    bool
	MeaningChangeRisk RiskLevel
	Entities          []Entity
	Confidence        float64
	Err               string
}

type Enricher interface {
	Process(ctx context.Context, text string, mode Mode, opts Options) Result
}

// Fallback builds the well-formed Result used when the enrichment service
// cannot be reached or returns unusable output.
func Fallback(text, errDetail string) Result {
	return Result{
		DetectedLanguages: []string{"unknown"},
		RawTranscript:     text,
		CleanedMeaning:    text,
		PromptReady:       text,
		RemovedFillers:    false,
		MeaningChangeRisk: RiskHigh,
		Entities:          []Entity{},
		Confidence:        0,
		Err:               errDetail,
	}
}
