package reconcile

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"surveyhub/internal/model"
)

// ErrEmptySource is returned when a feed contributed no respondent entries.
// A pass never runs on partial input.
var ErrEmptySource = errors.New("source payload is empty")

// Result is the output of one reconciliation pass
type Result struct {
	Documents []model.Document
	Fetched   model.SourceCounts
	Skipped   int
	Questions int
}

// Engine runs reconciliation passes. Each pass owns its resolver and merger,
// so one Engine may be shared by callers that each bring their own payloads.
type Engine struct {
	logger *zap.Logger
	newID  IDGenerator
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger.Named("reconcile")}
}

// SetIDGenerator replaces the record identifier allocator
func (e *Engine) SetIDGenerator(gen IDGenerator) {
	e.newID = gen
}

// Reconcile merges the three feeds into storage documents.
// Feeds are applied in order: Source 1, Source 2, Source 3.
func (e *Engine) Reconcile(p *model.Payloads) (*Result, error) {
	if p == nil {
		return nil, ErrEmptySource
	}

	steps := []struct {
		layout  Layout
		entries []map[string]any
	}{
		{FirstLayout, p.First},
		{SecondLayout, p.Second},
		{ThirdLayout, p.Third},
	}
	for _, step := range steps {
		if len(step.entries) == 0 {
			return nil, fmt.Errorf("%s: %w", step.layout.Source, ErrEmptySource)
		}
	}

	resolver := BuildResolver(p.First, p.Third)
	e.logger.Debug("question labels resolved", zap.Int("labels", resolver.Len()))

	merger := NewMerger()
	skipped := 0
	for _, step := range steps {
		partials, n := NewNormalizer(step.layout, resolver).Normalize(step.entries)
		if n > 0 {
			e.logger.Warn("entries without respondent id skipped",
				zap.Stringer("source", step.layout.Source),
				zap.Int("skipped", n))
		}
		skipped += n
		merger.Apply(partials)

		e.logger.Debug("source merged",
			zap.Stringer("source", step.layout.Source),
			zap.Int("respondents", len(partials)),
			zap.Int("records", merger.Len()))
	}

	docs := BuildDocuments(merger.Records(), e.newID)
	e.logger.Info("reconciliation complete",
		zap.Int("documents", len(docs)),
		zap.Int("questions", resolver.Len()))

	return &Result{
		Documents: docs,
		Fetched: model.SourceCounts{
			First:  len(p.First),
			Second: len(p.Second),
			Third:  len(p.Third),
		},
		Skipped:   skipped,
		Questions: resolver.Len(),
	}, nil
}
