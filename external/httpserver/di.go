package httpserver

import (
	"github.com/samber/do/v2"

	"github.com/Edwinswanith/multiaudio/internal/config"
	"github.com/Edwinswanith/multiaudio/internal/repository"
	"github.com/Edwinswanith/multiaudio/internal/session"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		return NewServer(
			do.MustInvoke[*config.Config](i),
			do.MustInvoke[*session.Manager](i),
			do.MustInvoke[repository.Repository](i),
		), nil
	})
}
