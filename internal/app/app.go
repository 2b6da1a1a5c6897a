package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"surveyhub/internal/cache"
	"surveyhub/internal/config"
	"surveyhub/internal/metrics"
	"surveyhub/internal/reconcile"
	"surveyhub/internal/repository"
	"surveyhub/internal/service"
	"surveyhub/internal/source"
)

// App bundles the wired dependencies shared by the server and the CLI
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	Mongo *mongo.Client
	Redis *redis.Client

	ResponseRepo repository.ResponseRepo
	RecordCache  cache.RecordCache
	RunLock      cache.RunLock

	Fetcher       *source.Fetcher
	Engine        *reconcile.Engine
	SyncService   *service.SyncService
	RecordService *service.RecordService
}

// New connects to MongoDB and Redis and wires the services.
// reg may be nil, in which case no metrics are recorded.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	if reg != nil {
		a.Metrics = metrics.New(reg)
	}

	mongoClient, err := repository.Connect(ctx, cfg.MongoURI(), cfg.Mongo.MaxPoolSize)
	if err != nil {
		return nil, err
	}
	a.Mongo = mongoClient
	logger.Info("connected to mongodb", zap.String("database", cfg.Mongo.Database))

	a.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	db := mongoClient.Database(cfg.Mongo.Database)
	a.ResponseRepo = repository.NewResponseRepo(db, cfg.Mongo.Collection, logger)
	a.RecordCache = cache.NewRecordCache(a.Redis, cfg.CacheTTL)
	a.RunLock = cache.NewRunLock(a.Redis, cfg.Sync.LockKey, cfg.Sync.LockTTL)

	client := source.NewClient(logger,
		source.WithTimeout(cfg.Sources.Timeout),
		source.WithMaxRetries(cfg.Sources.MaxRetries),
	)
	a.Fetcher = source.NewFetcher(client, source.Endpoints{
		First:  cfg.Sources.First,
		Second: cfg.Sources.Second,
		Third:  cfg.Sources.Third,
	}, a.Metrics, logger)
	a.Engine = reconcile.NewEngine(logger)

	a.SyncService = service.NewSyncService(a.Fetcher, a.Engine, a.ResponseRepo, a.RunLock, a.Metrics, logger)
	a.RecordService = service.NewRecordService(a.ResponseRepo, a.RecordCache, service.NewValidator(), logger)

	return a, nil
}

// SetBroadcaster routes change events from both services to b
func (a *App) SetBroadcaster(b service.Broadcaster) {
	a.SyncService.SetBroadcaster(b)
	a.RecordService.SetBroadcaster(b)
}

// Close releases the Redis and MongoDB connections
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			a.Logger.Warn("failed to disconnect mongodb", zap.Error(err))
		}
	}
}
