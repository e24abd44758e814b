package entitlement

import (
	"github.com/recvlabs/recv/internal/entitlement/repository"
	"github.com/recvlabs/recv/internal/entitlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("entitlement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
