package credit

import (
	"github.com/recvlabs/recv/internal/credit/repository"
	"github.com/recvlabs/recv/internal/credit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("credit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
