package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"surveyhub/internal/cache"
	"surveyhub/internal/metrics"
	"surveyhub/internal/model"
	"surveyhub/internal/reconcile"
	"surveyhub/internal/repository"
)

// ErrSyncInProgress is returned when another process holds the run-once lock
var ErrSyncInProgress = errors.New("sync already in progress")

// Fetcher supplies the three source payloads
type Fetcher interface {
	FetchAll(ctx context.Context) (*model.Payloads, error)
}

// SyncService populates the respondent collection from the source feeds
type SyncService struct {
	fetcher     Fetcher
	engine      *reconcile.Engine
	repo        repository.ResponseRepo
	lock        cache.RunLock
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

func NewSyncService(fetcher Fetcher, engine *reconcile.Engine, repo repository.ResponseRepo, lock cache.RunLock, m *metrics.Metrics, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		fetcher:     fetcher,
		engine:      engine,
		repo:        repo,
		lock:        lock,
		broadcaster: nopBroadcaster{},
		metrics:     m,
		logger:      logger.Named("sync"),
		now:         time.Now,
	}
}

// SetBroadcaster sets the change feed publisher
func (s *SyncService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// EnsureInitialized runs the initial population once: when the collection
// already exists the run is skipped unless force is set, in which case the
// collection is rebuilt. The stored collection changes only when every
// document was written; a failed run leaves it as it was.
func (s *SyncService) EnsureInitialized(ctx context.Context, force bool) (*model.SyncResult, error) {
	result := &model.SyncResult{
		RunID:     uuid.NewString(),
		StartedAt: s.now(),
	}
	log := s.logger.With(zap.String("run_id", result.RunID), zap.Bool("force", force))

	token, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		log.Info("sync skipped, another run holds the lock")
		return nil, ErrSyncInProgress
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), token); err != nil {
			log.Warn("failed to release sync lock", zap.Error(err))
		}
	}()

	exists, err := s.repo.CollectionExists(ctx)
	if err != nil {
		return nil, s.fail(log, result, err)
	}
	if exists && !force {
		result.Status = model.SyncSkipped
		result.FinishedAt = s.now()
		s.metrics.SyncRun(string(model.SyncSkipped), 0)
		log.Info("collection already populated, nothing to do")
		return result, nil
	}

	s.broadcaster.Broadcast(MsgSyncStarted, map[string]interface{}{"runId": result.RunID, "force": force})
	log.Info("sync started")

	payloads, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, s.fail(log, result, err)
	}

	res, err := s.engine.Reconcile(payloads)
	if err != nil {
		return nil, s.fail(log, result, fmt.Errorf("failed to reconcile sources: %w", err))
	}
	result.Fetched = res.Fetched
	result.Skipped = res.Skipped
	result.Documents = len(res.Documents)

	inserted, err := s.repo.ReplaceAll(ctx, res.Documents)
	if err != nil {
		return nil, s.fail(log, result, err)
	}
	result.Inserted = inserted
	if exists {
		log.Info("existing collection replaced")
	}

	// indexes go in after the insert so an empty collection never counts as populated
	if err := s.repo.EnsureIndexes(ctx); err != nil {
		log.Warn("failed to ensure indexes", zap.Error(err))
	}

	result.Status = model.SyncCompleted
	result.FinishedAt = s.now()
	s.metrics.DocumentsReconciled(result.Documents)
	s.metrics.SyncRun(string(model.SyncCompleted), result.FinishedAt.Sub(result.StartedAt))
	s.broadcaster.Broadcast(MsgSyncCompleted, result)

	log.Info("sync completed",
		zap.Int("documents", result.Documents),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped_entries", result.Skipped))
	return result, nil
}

func (s *SyncService) fail(log *zap.Logger, result *model.SyncResult, err error) error {
	result.Status = model.SyncFailed
	result.FinishedAt = s.now()
	s.metrics.SyncRun(string(model.SyncFailed), result.FinishedAt.Sub(result.StartedAt))
	s.broadcaster.Broadcast(MsgSyncFailed, map[string]interface{}{
		"runId": result.RunID,
		"error": err.Error(),
	})
	log.Error("sync failed", zap.Error(err))
	return err
}

// Preview fetches and reconciles the sources without touching storage
func (s *SyncService) Preview(ctx context.Context) (*reconcile.Result, error) {
	payloads, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Reconcile(payloads)
}
