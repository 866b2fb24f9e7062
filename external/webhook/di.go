package webhook

import (
	"github.com/samber/do/v2"

	"github.com/Edwinswanith/multiaudio/internal/config"
	"github.com/Edwinswanith/multiaudio/internal/webhook"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (webhook.Sender, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewHTTPSender(cfg.TranscriptWebhookURL), nil
	})
}
