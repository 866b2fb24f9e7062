package transcriber

import (
	"github.com/samber/do/v2"

	"github.com/Edwinswanith/multiaudio/internal/config"
	"github.com/Edwinswanith/multiaudio/internal/transcriber"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transcriber.Transcriber, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewElevenLabsTranscriber(ElevenLabsConfig{
			APIKey:                  c.ElevenLabsAPIKey,
			ModelID:                 c.ElevenLabsModelID,
			AudioFormat:             c.STTAudioFormat,
			VADSilenceThresholdSecs: c.VADSilenceThresholdSecs,
		}), nil
	})
}
