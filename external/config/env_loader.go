package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	internalconfig "github.com/Edwinswanith/multiaudio/internal/config"
)

type envConfig struct {
	Env        string `env:"ENV" envDefault:"production"`
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8000"`

	ElevenLabsAPIKey        string  `env:"ELEVENLABS_API_KEY"`
	ElevenLabsModelID       string  `env:"ELEVENLABS_MODEL_ID" envDefault:"scribe_v2_realtime"`
	STTAudioFormat          string  `env:"STT_AUDIO_FORMAT" envDefault:"pcm_16000"`
	VADSilenceThresholdSecs float64 `env:"VAD_SILENCE_THRESHOLD_SECS" envDefault:"1.0"`

	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiModel      string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	EnrichTimeoutSec int    `env:"ENRICH_TIMEOUT_SEC" envDefault:"30"`

	DatabaseURL          string `env:"DATABASE_URL"`
	TranscriptWebhookURL string `env:"TRANSCRIPT_WEBHOOK_URL"`
}

func Load() (*internalconfig.Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("environment variables are invalid or missing: %w", err)
	}

	cfg := &internalconfig.Config{
		Env:                     raw.Env,
		ListenAddr:              raw.ListenAddr,
		ElevenLabsAPIKey:        raw.ElevenLabsAPIKey,
		ElevenLabsModelID:       raw.ElevenLabsModelID,
		STTAudioFormat:          raw.STTAudioFormat,
		VADSilenceThresholdSecs: raw.VADSilenceThresholdSecs,
		GeminiAPIKey:            raw.GeminiAPIKey,
		GeminiModel:             raw.GeminiModel,
		EnrichTimeoutSec:        raw.EnrichTimeoutSec,
		DatabaseURL:             raw.DatabaseURL,
		TranscriptWebhookURL:    raw.TranscriptWebhookURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
