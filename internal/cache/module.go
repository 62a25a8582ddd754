package cache

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/PiyushJZ/streamly-auth-service/internal/config"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig) *Cache {
					return New(&config.Redis)
				},
			),
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	cache *Cache,
	logger *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return cache.Ping(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing redis connection")
			return cache.Close()
		},
	})
}
