package service

import (
	"context"

	"go.uber.org/zap"

	"surveyhub/internal/cache"
	"surveyhub/internal/model"
	"surveyhub/internal/repository"
)

// RecordService serves stored respondent documents
type RecordService struct {
	repo        repository.ResponseRepo
	cache       cache.RecordCache
	validator   *Validator
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewRecordService creates the service. recordCache may be nil to disable caching.
func NewRecordService(repo repository.ResponseRepo, recordCache cache.RecordCache, validator *Validator, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = NewValidator()
	}
	return &RecordService{
		repo:        repo,
		cache:       recordCache,
		validator:   validator,
		broadcaster: nopBroadcaster{},
		logger:      logger.Named("records"),
	}
}

// SetBroadcaster sets the change feed publisher
func (s *RecordService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *RecordService) List(ctx context.Context) ([]model.Document, error) {
	return s.repo.FindAll(ctx)
}

// Get returns the document of a respondent, or repository.ErrNotFound
func (s *RecordService) Get(ctx context.Context, respondentID string) (*model.Document, error) {
	if s.cache != nil {
		doc, err := s.cache.Get(ctx, respondentID)
		if err != nil {
			s.logger.Warn("record cache read failed", zap.String("id", respondentID), zap.Error(err))
		} else if doc != nil {
			return doc, nil
		}
	}

	doc, err := s.repo.FindByRespondentID(ctx, respondentID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, doc); err != nil {
			s.logger.Warn("record cache write failed", zap.String("id", respondentID), zap.Error(err))
		}
	}
	return doc, nil
}

// Update replaces the common fields and survey data of a stored document.
// The record ID and respondent identity never change.
func (s *RecordService) Update(ctx context.Context, respondentID string, upd *model.DocumentUpdate) (*model.Document, error) {
	doc, err := s.repo.FindByRespondentID(ctx, respondentID)
	if err != nil {
		return nil, err
	}

	doc.CommonFields = upd.CommonFields
	doc.SurveyData = upd.SurveyData
	if doc.SurveyData == nil {
		doc.SurveyData = map[string]model.AnswerEntry{}
	}

	if err := s.repo.Replace(ctx, doc); err != nil {
		return nil, err
	}
	s.invalidate(ctx, respondentID)
	s.broadcaster.Broadcast(MsgRecordUpdated, doc)
	return doc, nil
}

func (s *RecordService) Delete(ctx context.Context, respondentID string) error {
	if err := s.repo.Delete(ctx, respondentID); err != nil {
		return err
	}
	s.invalidate(ctx, respondentID)
	s.broadcaster.Broadcast(MsgRecordDeleted, map[string]string{"id": respondentID})
	return nil
}

// Validate checks the stored document of a respondent
func (s *RecordService) Validate(ctx context.Context, respondentID string) ([]model.ValidationIssue, error) {
	doc, err := s.Get(ctx, respondentID)
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(doc), nil
}

func (s *RecordService) invalidate(ctx context.Context, respondentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, respondentID); err != nil {
		s.logger.Warn("record cache invalidation failed", zap.String("id", respondentID), zap.Error(err))
	}
}
