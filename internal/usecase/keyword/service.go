// Package keyword implements substring search with relevance ranking.
package keyword

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	domdoc "github.com/corpora-lab/qadex/internal/domain/document"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
	"github.com/corpora-lab/qadex/internal/domain/search/relevance"
	"github.com/corpora-lab/qadex/internal/domain/search/request"
	"github.com/corpora-lab/qadex/internal/domain/search/result"
	"github.com/corpora-lab/qadex/internal/metrics"
)

// Candidate fetch defaults. Matching happens in memory, so the service
// over-fetches relative to the requested limit to keep recall up.
const (
	DefaultOversampleRatio = 10
	DefaultOversampleCap   = 1000
)

// Service ranks documents by keyword relevance.
type Service struct {
	repo            Repository
	oversampleRatio int
	oversampleCap   int
	logger          *zap.Logger
}

// New creates a keyword search service. Non-positive tuning values fall
// back to the defaults.
func New(repo Repository, oversampleRatio, oversampleCap int, logger *zap.Logger) *Service {
	if oversampleRatio <= 0 {
		oversampleRatio = DefaultOversampleRatio
	}
	if oversampleCap <= 0 {
		oversampleCap = DefaultOversampleCap
	}
	return &Service{
		repo:            repo,
		oversampleRatio: oversampleRatio,
		oversampleCap:   oversampleCap,
		logger:          logger.Named("keyword"),
	}
}

// Search fetches candidates, gates them on substring match, scores the
// survivors and returns the top results sorted by relevance descending.
// Ties keep the store's candidate order.
func (s *Service) Search(ctx context.Context, req *request.Keyword) ([]result.Result, error) {
	start := time.Now()

	fetchLimit := req.Limit() * s.oversampleRatio
	if fetchLimit > s.oversampleCap {
		fetchLimit = s.oversampleCap
	}

	docs, err := s.repo.Find(ctx, req.Filter(), fetchLimit)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("keyword", "error").Inc()
		return nil, fmt.Errorf("fetch candidates: %w", err)
	}

	results := make([]result.Result, 0, req.Limit())
	for i := range docs {
		doc := &docs[i]
		if !relevance.Matches(doc, req.Keyword(), req.Fields(), req.CaseSensitive()) {
			continue
		}
		score := relevance.Score(doc, req.Keyword(), req.Fields(), req.CaseSensitive())
		results = append(results, result.New(*doc, score))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance() > results[j].Relevance()
	})
	if len(results) > req.Limit() {
		results = results[:req.Limit()]
	}

	metrics.SearchRequestsTotal.WithLabelValues("keyword", "success").Inc()
	metrics.SearchDuration.WithLabelValues("keyword").Observe(time.Since(start).Seconds())

	s.logger.Debug("Keyword search done",
		zap.String("keyword", req.Keyword()),
		zap.Int("candidates", len(docs)),
		zap.Int("matches", len(results)),
	)
	return results, nil
}

// SearchByCategory lists documents in a category without scoring.
func (s *Service) SearchByCategory(ctx context.Context, category string, limit int) ([]domdoc.Document, error) {
	docs, err := s.repo.Find(ctx, filter.New(category, ""), limit)
	if err != nil {
		return nil, fmt.Errorf("find by category: %w", err)
	}
	return docs, nil
}

// SearchBySource lists documents from a source without scoring.
func (s *Service) SearchBySource(ctx context.Context, source string, limit int) ([]domdoc.Document, error) {
	docs, err := s.repo.Find(ctx, filter.New("", source), limit)
	if err != nil {
		return nil, fmt.Errorf("find by source: %w", err)
	}
	return docs, nil
}
