package observability

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/recvlabs/recv/internal/config"
	"github.com/recvlabs/recv/internal/observability/logger"
	"github.com/recvlabs/recv/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		provideRegistry,
		func(reg *prometheus.Registry) *metrics.Metrics { return metrics.New(reg) },
	),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Debug:       isDebug(cfg),
	}
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	return reg
}

func isDebug(cfg config.Config) bool {
	if strings.EqualFold(strings.TrimSpace(cfg.LogLevel), "debug") {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Environment)) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
