package enricher

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/Edwinswanith/multiaudio/internal/config"
	"github.com/Edwinswanith/multiaudio/internal/enricher"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (enricher.Enricher, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewGeminiEnricher(context.Background(), GeminiConfig{
			APIKey:  c.GeminiAPIKey,
			Model:   c.GeminiModel,
			Timeout: c.EnrichTimeout(),
		})
	})
}
