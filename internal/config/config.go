package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env        string
	ListenAddr string

	ElevenLabsAPIKey        string
	ElevenLabsModelID       string
	STTAudioFormat          string
	VADSilenceThresholdSecs float64

	GeminiAPIKey     string
	GeminiModel      string
	EnrichTimeoutSec int

	DatabaseURL          string
	TranscriptWebhookURL string
}

// Validate checks the fields the process cannot run without. Provider
// credentials are deliberately not required here: a missing ElevenLabs key is
// reported per session and a missing Gemini key degrades enrichment to
// fallback results.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}
	if c.ElevenLabsModelID == "" {
		return fmt.Errorf("ELEVENLABS_MODEL_ID is required")
	}
	if c.STTAudioFormat == "" {
		return fmt.Errorf("STT_AUDIO_FORMAT is required")
	}
	if c.VADSilenceThresholdSecs <= 0 {
		return fmt.Errorf("VAD_SILENCE_THRESHOLD_SECS must be positive, got %g", c.VADSilenceThresholdSecs)
	}
	if c.GeminiModel == "" {
		return fmt.Errorf("GEMINI_MODEL is required")
	}
	if c.EnrichTimeoutSec <= 0 {
		return fmt.Errorf("ENRICH_TIMEOUT_SEC must be positive, got %d", c.EnrichTimeoutSec)
	}
	return nil
}

func (c *Config) EnrichTimeout() time.Duration {
	return time.Duration(c.EnrichTimeoutSec) * time.Second
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
