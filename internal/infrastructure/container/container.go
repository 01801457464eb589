// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	appmealplan "github.com/mealbuddy/engine/internal/application/mealplan"
	apppricing "github.com/mealbuddy/engine/internal/application/pricing"
	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/domain/pricing"
	"github.com/mealbuddy/engine/internal/domain/shared"
	"github.com/mealbuddy/engine/internal/infrastructure/config"
	"github.com/mealbuddy/engine/internal/infrastructure/http/opsserver"
	"github.com/mealbuddy/engine/internal/infrastructure/http/server"
	"github.com/mealbuddy/engine/internal/infrastructure/monitoring"
	gormRepo "github.com/mealbuddy/engine/internal/infrastructure/persistence/gorm"
	"github.com/mealbuddy/engine/internal/infrastructure/persistence/memory"
	"github.com/mealbuddy/engine/internal/infrastructure/persistence/migrations"
	"github.com/mealbuddy/engine/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/mealbuddy/engine/internal/infrastructure/persistence/redis"
	"github.com/mealbuddy/engine/internal/infrastructure/persistence/sqlite"
	"github.com/mealbuddy/engine/internal/infrastructure/security"
	"github.com/mealbuddy/engine/internal/infrastructure/storage"
	"github.com/mealbuddy/engine/internal/ports/inbound"
	"github.com/mealbuddy/engine/internal/ports/outbound"
	"github.com/mealbuddy/engine/pkg/healthcheck"
	"github.com/mealbuddy/engine/pkg/logger"
)

// ConfigPath is the configuration file to load; empty searches the
// default locations
type ConfigPath string

// Options returns the complete application graph
func Options(path string) fx.Option {
	return fx.Options(
		fx.Supply(ConfigPath(path)),
		Module,
	)
}

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	ObservabilityModule,
	DatabaseModule,
	CacheModule,
	StorageModule,

	// Repository modules
	RepositoryModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Event modules
	EventModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration and the settings that follow config
// reloads
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
	NewRuntimeSettings,
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// ObservabilityModule provides metrics, tracing and health checks
var ObservabilityModule = fx.Provide(
	func(log *zap.Logger) *monitoring.MetricsCollector {
		return monitoring.NewMetricsCollector(log.Named("metrics"))
	},
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log.Named("tracing"))
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
	func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
		return healthcheck.New(cfg.App.Version, log.Named("health"))
	},
)

// DatabaseModule provides database connections
var DatabaseModule = fx.Provide(
	func(
		lc fx.Lifecycle,
		cfg *config.Config,
		log *zap.Logger,
		health *healthcheck.HealthCheck,
		metrics *monitoring.MetricsCollector,
	) (*gorm.DB, error) {
		db, err := openDatabase(cfg, log)
		if err != nil {
			return nil, err
		}

		monitor := gormRepo.NewQueryMonitor(log, cfg.Database.SlowQueryThreshold, metrics.DBQueryObserved)
		if err := db.Use(monitor); err != nil {
			return nil, fmt.Errorf("failed to register query monitor: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		health.Register("database", healthcheck.NewDatabaseChecker(sqlDB))

		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return sqlDB.Close()
			},
		})
		return db, nil
	},
)

func openDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.Database.Driver != "postgres" {
		db, err := sqlite.SetupDatabase(cfg.Database.SQLitePath,
			gormRepo.NewLogger(log, cfg.App.LogLevel, cfg.Database.SlowQueryThreshold))
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		log.Info("Connected to SQLite database", zap.String("path", cfg.Database.SQLitePath))
		return db, nil
	}

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg, log); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return postgres.Connect(ctx, cfg, log)
}

func migrateUp(cfg *config.Config, log *zap.Logger) error {
	m, err := migrations.Open(cfg.GetMigrationURL(), cfg.Database.Database, log)
	if err != nil {
		return fmt.Errorf("failed to open migrator: %w", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	return m.Up()
}

// CacheModule provides caching
var CacheModule = fx.Provide(
	func(
		lc fx.Lifecycle,
		cfg *config.Config,
		log *zap.Logger,
		health *healthcheck.HealthCheck,
	) (outbound.CacheRepository, error) {
		if cfg.Cache.Provider != "redis" {
			log.Info("Using in-memory cache")
			cache := memory.NewCacheRepository(cfg.Cache.CleanupInterval)
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cache.Stop()
					return nil
				},
			})
			return cache, nil
		}

		client, err := redisRepo.NewClient(context.Background(), cfg, log)
		if err != nil {
			return nil, err
		}

		breakerCfg := healthcheck.DefaultCircuitBreakerConfig()
		breakerCfg.OnStateChange = func(name string, from, to healthcheck.CircuitBreakerState) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		}
		breaker := healthcheck.NewCircuitBreaker("redis-cache", breakerCfg)

		health.Register("redis", healthcheck.NewRedisChecker(client, false))
		health.Register("redis-circuit", breaker)

		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return client.Close()
			},
		})
		return redisRepo.NewCacheRepository(client, breaker, log), nil
	},
)

// StorageModule provides the plan export target. Export stays off unless
// the feature is enabled and a bucket is configured.
var StorageModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.StorageService, error) {
		if !cfg.Features.EnablePlanExport || cfg.AWS.S3Bucket == "" {
			return nil, nil
		}
		s3, err := storage.NewS3Storage(cfg.AWS, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
		return s3, nil
	},
)

// RepositoryModule provides repository implementations
var RepositoryModule = fx.Provide(
	gormRepo.NewMealPlanRepository,
	gormRepo.NewProfileRepository,
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	security.NewValidationService,
	security.NewAuthService,

	func(
		cfg *config.Config,
		cache outbound.CacheRepository,
		validator *security.ValidationService,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) *apppricing.Service {
		return apppricing.NewService(pricing.NewEngine(), cache, cfg.Cache.PricingTTL, validator, metrics, log)
	},
	func(s *apppricing.Service) inbound.PricingService { return s },

	func(
		cfg *config.Config,
		repo outbound.MealPlanRepository,
		profiles outbound.ProfileRepository,
		pricingSvc *apppricing.Service,
		store outbound.StorageService,
		events shared.EventDispatcher,
		validator *security.ValidationService,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) inbound.MealPlanService {
		return appmealplan.NewService(appmealplan.Dependencies{
			Repository: repo,
			Profiles:   profiles,
			Pricing:    pricingSvc,
			Storage:    store,
			Events:     events,
			Validator:  validator,
			Metrics:    metrics,
		}, appmealplan.Options{
			PersistenceTimeout: cfg.Engine.PersistenceTimeout,
			MaxFamilySize:      cfg.Engine.MaxFamilySize,
			IncludePricing:     cfg.Features.IncludePricingInPlan,
			ProfileLookup:      cfg.Features.EnableProfileLookup,
			ExportPlans:        store != nil,
		}, log)
	},
)

// HTTPModule provides the API and operations servers
var HTTPModule = fx.Provide(
	func(
		cfg *config.Config,
		mealPlans inbound.MealPlanService,
		pricingSvc inbound.PricingService,
		auth *security.AuthService,
		metrics *monitoring.MetricsCollector,
		tracing *monitoring.TracingProvider,
		settings *RuntimeSettings,
		log *zap.Logger,
	) (*server.Server, error) {
		deps := server.Dependencies{
			MealPlans:   mealPlans,
			Pricing:     pricingSvc,
			Auth:        auth,
			Tracing:     tracing,
			Maintenance: settings.Maintenance,
		}
		if cfg.Monitoring.EnableMetrics {
			deps.Metrics = metrics
		}
		return server.NewServer(cfg, deps, log)
	},
	func(
		cfg *config.Config,
		health *healthcheck.HealthCheck,
		metrics *monitoring.MetricsCollector,
		log *zap.Logger,
	) *opsserver.Server {
		if !cfg.Monitoring.EnableMetrics {
			return opsserver.NewServer(cfg, health, nil, log)
		}
		return opsserver.NewServer(cfg, health, metrics.Handler(), log)
	},
)

// EventModule provides event handling
var EventModule = fx.Options(
	fx.Provide(
		shared.NewSyncDispatcher,
		func(d *shared.SyncDispatcher) shared.EventDispatcher { return d },
	),
	fx.Invoke(RegisterEventHandlers),
)

// RegisterEventHandlers subscribes observers to domain events
func RegisterEventHandlers(dispatcher *shared.SyncDispatcher, metrics *monitoring.MetricsCollector, log *zap.Logger) {
	dispatcher.Register(mealplan.MealPlanGeneratedEvent{}.EventName(), metrics.HandleMealPlanGenerated)
	dispatcher.Register(mealplan.MealPlanGeneratedEvent{}.EventName(), func(event shared.DomainEvent) error {
		if generated, ok := event.(mealplan.MealPlanGeneratedEvent); ok {
			log.Debug("Meal plan generated",
				zap.String("plan_id", generated.PlanID.String()),
				zap.String("budget_tier", generated.BudgetTier),
				zap.Float64("total_cost", generated.TotalCost),
			)
		}
		return nil
	})
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	WatchConfig,
	RegisterLifecycleHooks,
)

// RuntimeSettings holds the values that may change while running
type RuntimeSettings struct {
	maintenance atomic.Bool
}

// NewRuntimeSettings seeds the settings from the loaded configuration
func NewRuntimeSettings(cfg *config.Config) *RuntimeSettings {
	s := &RuntimeSettings{}
	s.maintenance.Store(cfg.Features.MaintenanceMode)
	return s
}

// Maintenance reports whether API traffic is being refused
func (s *RuntimeSettings) Maintenance() bool {
	return s.maintenance.Load()
}

// Apply takes the reloadable values from a new configuration revision
func (s *RuntimeSettings) Apply(cfg *config.Config) {
	s.maintenance.Store(cfg.Features.MaintenanceMode)
}

// WatchConfig applies log level and maintenance mode changes from the
// config file without a restart
func WatchConfig(cfg *config.Config, level zap.AtomicLevel, settings *RuntimeSettings, log *zap.Logger) {
	watching := cfg.Watch(func(next *config.Config) {
		level.SetLevel(logger.ParseLevel(next.App.LogLevel))
		settings.Apply(next)
		log.Info("Configuration reloaded",
			zap.String("log_level", next.App.LogLevel),
			zap.Bool("maintenance_mode", next.Features.MaintenanceMode),
		)
	}, func(err error) {
		log.Error("Ignoring invalid configuration change", zap.Error(err))
	})
	if watching {
		log.Info("Watching configuration file for changes")
	}
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	api *server.Server,
	ops *opsserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting MealBuddy engine",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				var g errgroup.Group
				g.Go(api.Start)
				g.Go(ops.Start)
				if err := g.Wait(); err != nil {
					log.Error("HTTP server failed", zap.Error(err))
					if err := shutdowner.Shutdown(fx.ExitCode(1)); err != nil {
						log.Error("Failed to request shutdown", zap.Error(err))
					}
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down MealBuddy engine")

			var g errgroup.Group
			g.Go(func() error { return api.Shutdown(ctx) })
			g.Go(func() error { return ops.Shutdown(ctx) })
			if err := g.Wait(); err != nil {
				log.Error("Failed to shutdown HTTP servers", zap.Error(err))
			}

			_ = log.Sync()
			return nil
		},
	})
}
