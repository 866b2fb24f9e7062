package session

import (
	"github.com/samber/do/v2"

	"github.com/Edwinswanith/multiaudio/internal/config"
	"github.com/Edwinswanith/multiaudio/internal/enricher"
	"github.com/Edwinswanith/multiaudio/internal/repository"
	"github.com/Edwinswanith/multiaudio/internal/transcriber"
	"github.com/Edwinswanith/multiaudio/internal/webhook"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Manager, error) {
		return NewManager(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[transcriber.Transcriber](i),
			do.MustInvoke[enricher.Enricher](i),
			do.MustInvoke[repository.Repository](i),
			do.MustInvoke[webhook.Sender](i),
		), nil
	})
}
