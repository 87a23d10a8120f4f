package app

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/warrantly/expiry-notifier/internal/config"
	deliveryHTTP "github.com/warrantly/expiry-notifier/internal/delivery/http"
	repo "github.com/warrantly/expiry-notifier/internal/domain/repository"
	"github.com/warrantly/expiry-notifier/internal/logger"
	"github.com/warrantly/expiry-notifier/internal/notifiers"
	"github.com/warrantly/expiry-notifier/internal/scheduler"
	"github.com/warrantly/expiry-notifier/internal/service"
	"github.com/warrantly/expiry-notifier/internal/storage/memory"
	"github.com/warrantly/expiry-notifier/internal/storage/postgres"
	redisstore "github.com/warrantly/expiry-notifier/internal/storage/redis"
	"go.uber.org/fx"
)

// newCaches selects the dedupe/scan cache backend from configuration. The
// in-process backend is the single-instance default; redis makes the caches
// shared so multiple scheduler instances do not double-notify.
func newCaches(cfg *config.Config, log *zerolog.Logger) (repo.DedupeCache, repo.ScanCache, error) {
	if cfg.Cache.Backend == "redis" {
		client, err := redisstore.NewClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("backend", "redis").Msg("cache backend selected")
		return redisstore.NewDedupeCache(log, client), redisstore.NewScanCache(log, client), nil
	}
	log.Info().Str("backend", "memory").Msg("cache backend selected")
	return memory.NewDedupeCache(), memory.NewScanCache(), nil
}

// CommonModule provides dependencies that are shared between the API and
// scheduler applications.
var CommonModule = fx.Options(
	fx.Provide(
		// Core components
		config.NewConfig,
		logger.NewLogger,

		// Storage layer
		postgres.NewPool,
		fx.Annotate(postgres.NewWarrantyStore, fx.As(new(repo.WarrantyStore))),
		fx.Annotate(postgres.NewNotificationLog, fx.As(new(repo.NotificationLog))),
		newCaches,

		// Channels and service layer
		fx.Annotate(notifiers.NewDispatcher, fx.As(new(notifiers.Resolver))),
		service.NewExpiryService,
	),
)

// APIModule defines the Fx module for the HTTP API application.
var APIModule = fx.Options(
	CommonModule,
	fx.Provide(
		deliveryHTTP.NewHandlers,
		deliveryHTTP.NewServer,
	),

	fx.Invoke(func(server *deliveryHTTP.Server, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						panic(err)
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		})
	}),
)

// SchedulerModule defines the Fx module for the background scan loop.
var SchedulerModule = fx.Options(
	CommonModule,
	fx.Provide(
		scheduler.New,
	),
	fx.Invoke(func(s *scheduler.Scheduler, cfg *config.Config, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				s.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				s.Stop(cfg.Scheduler.GracePeriod)
				return nil
			},
		})
	}),
)
