package resource

import (
	"github.com/recvlabs/recv/internal/resource/repository"
	"github.com/recvlabs/recv/internal/resource/service"
	"go.uber.org/fx"
)

var Module = fx.Module("resource.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
