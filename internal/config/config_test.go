package config

import "testing"

func validConfig() *Config {
	return &Config{
		Env:                     "development",
		ListenAddr:              ":8000",
		ElevenLabsAPIKey:        "xi-key",
		ElevenLabsModelID:       "scribe_v2_realtime",
		STTAudioFormat:          "pcm_16000",
		VADSilenceThresholdSecs: 1.0,
		GeminiAPIKey:            "gm-key",
		GeminiModel:             "gemini-2.0-flash",
		EnrichTimeoutSec:        30,
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidate_MissingCredentialsAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.ElevenLabsAPIKey = ""
	cfg.GeminiAPIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("missing provider keys must not fail validation, got %v", err)
	}
}

func TestValidate_MissingListenAddr(t *testing.T) {
	cfg := validConfig()
	cfg.ListenAddr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing listen address")
	}
}

func TestValidate_NonPositiveEnrichTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.EnrichTimeoutSec = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive enrich timeout")
	}
}

func TestValidate_NonPositiveVADThreshold(t *testing.T) {
	cfg := validConfig()
	cfg.VADSilenceThresholdSecs = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive vad threshold")
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode")
	}
	cfg.Env = "production"
	if cfg.IsDevelopment() {
		t.Fatal("expected non-development mode")
	}
}
