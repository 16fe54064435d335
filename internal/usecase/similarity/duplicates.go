package similarity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/corpora-lab/qadex/internal/domain/search/filter"
	"github.com/corpora-lab/qadex/internal/domain/search/group"
	"github.com/corpora-lab/qadex/internal/domain/search/request"
	"github.com/corpora-lab/qadex/internal/domain/search/result"
	"github.com/corpora-lab/qadex/internal/metrics"
)

// FindDuplicates scans the corpus for clusters of near-identical
// documents. Clustering is greedy and single-pass: the first document to
// claim a neighbor keeps it, and groups are never merged transitively.
// Group order follows the store's return order of the primaries.
//
// The per-primary KNN lookups run on a worker pool; the processed set is
// guarded by a mutex so each document is claimed exactly once.
func (s *Service) FindDuplicates(ctx context.Context, req *request.Duplicates) ([]group.Group, error) {
	start := time.Now()

	scanLimit := req.SampleSize()
	if scanLimit <= 0 {
		scanLimit = s.scanLimit
	}

	docs, err := s.docs.Sample(ctx, filter.Filter{}, scanLimit)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("duplicates", "error").Inc()
		return nil, fmt.Errorf("sample corpus: %w", err)
	}

	pool, err := ants.NewPool(s.scanWorkers)
	if err != nil {
		return nil, fmt.Errorf("create scan pool: %w", err)
	}
	defer pool.Release()

	var (
		mu        sync.Mutex
		processed = make(map[string]bool, len(docs))
		slots     = make([]*group.Group, len(docs))
		scanErr   error
		wg        sync.WaitGroup
	)

	for i := range docs {
		i := i
		doc := &docs[i]
		if !doc.HasVector() {
			s.logger.Debug("Skipping vectorless document in scan", zap.String("id", doc.ID()))
			continue
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			// Claim the primary, or skip it if another group already took it.
			mu.Lock()
			if scanErr != nil || processed[doc.ID()] {
				mu.Unlock()
				return
			}
			processed[doc.ID()] = true
			mu.Unlock()

			flt := filter.Filter{}.WithExcludeID(doc.ID())
			hits, err := s.search.FindByVector(ctx, doc.Vector(), flt, req.PerQueryLimit())
			if err != nil {
				mu.Lock()
				if scanErr == nil {
					scanErr = fmt.Errorf("scan %s: %w", doc.ID(), err)
				}
				mu.Unlock()
				return
			}

			mu.Lock()
			defer mu.Unlock()
			var dups []result.Similar
			for j := range hits {
				h := &hits[j]
				if h.Similarity() < req.Threshold() {
					continue
				}
				if processed[h.Document().ID()] {
					continue
				}
				processed[h.Document().ID()] = true
				dups = append(dups, *h)
			}
			if len(dups) > 0 {
				g := group.New(doc.ID(), doc.Question(), dups)
				slots[i] = &g
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if scanErr == nil {
				scanErr = fmt.Errorf("submit scan task: %w", submitErr)
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if scanErr != nil {
		metrics.SearchRequestsTotal.WithLabelValues("duplicates", "error").Inc()
		return nil, scanErr
	}

	groups := make([]group.Group, 0)
	for _, g := range slots {
		if g != nil {
			groups = append(groups, *g)
		}
	}

	metrics.SearchRequestsTotal.WithLabelValues("duplicates", "success").Inc()
	metrics.SearchDuration.WithLabelValues("duplicates").Observe(time.Since(start).Seconds())
	metrics.DuplicateScanDocs.Add(float64(len(docs)))
	metrics.DuplicateGroupsFound.Set(float64(len(groups)))

	s.logger.Info("Duplicate scan done",
		zap.Int("documents", len(docs)),
		zap.Int("groups", len(groups)),
		zap.Float64("threshold", req.Threshold()),
	)
	return groups, nil
}
