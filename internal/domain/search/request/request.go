// Package request holds validated search query value objects.
package request

import (
	"fmt"

	"github.com/corpora-lab/qadex/internal/domain"
	"github.com/corpora-lab/qadex/internal/domain/search/filter"
	"github.com/corpora-lab/qadex/internal/domain/search/relevance"
)

// Default result limits.
const (
	DefaultKeywordLimit    = 20
	DefaultSimilarityLimit = 10
	DefaultPerQueryLimit   = 5
)

// DefaultDuplicateThreshold is the similarity above which two documents
// are considered likely duplicates.
const DefaultDuplicateThreshold = 0.90

// Keyword is a validated keyword search query.
type Keyword struct {
	keyword       string
	fields        []relevance.Field
	category      string
	source        string
	limit         int
	caseSensitive bool
}

// NewKeyword validates and creates a keyword query. An empty field set
// defaults to {question, answer}; a non-positive limit defaults to
// DefaultKeywordLimit.
func NewKeyword(
	keyword string, fields []relevance.Field,
	category, source string, limit int, caseSensitive bool,
) (Keyword, error) {
	if keyword == "" {
		return Keyword{}, fmt.Errorf("keyword is required")
	}
	if len(fields) == 0 {
		fields = relevance.DefaultFields()
	}
	for _, f := range fields {
		if !relevance.Known(f) {
			return Keyword{}, fmt.Errorf("unknown search field %q", f)
		}
	}
	if limit <= 0 {
		limit = DefaultKeywordLimit
	}
	return Keyword{
		keyword: keyword, fields: fields,
		category: category, source: source,
		limit: limit, caseSensitive: caseSensitive,
	}, nil
}

// Keyword returns the search term.
func (k *Keyword) Keyword() string { return k.keyword }

// Fields returns the fields to search.
func (k *Keyword) Fields() []relevance.Field { return k.fields }

// Limit returns the maximum number of results.
func (k *Keyword) Limit() int { return k.limit }

// CaseSensitive reports whether matching is case-sensitive.
func (k *Keyword) CaseSensitive() bool { return k.caseSensitive }

// Filter returns the equality filter for the store fetch.
func (k *Keyword) Filter() filter.Filter { return filter.New(k.category, k.source) }

// Similarity is a validated vector similarity query.
type Similarity struct {
	threshold float64
	limit     int
	category  string
	source    string
	excludeID string
}

// NewSimilarity validates and creates a similarity query. The threshold
// must be in [0,1]; a non-positive limit defaults to DefaultSimilarityLimit.
func NewSimilarity(
	threshold float64, limit int, category, source, excludeID string,
) (Similarity, error) {
	if threshold < 0 || threshold > 1 {
		return Similarity{}, fmt.Errorf("threshold %g: %w", threshold, domain.ErrInvalidThreshold)
	}
	if limit <= 0 {
		limit = DefaultSimilarityLimit
	}
	return Similarity{
		threshold: threshold, limit: limit,
		category: category, source: source, excludeID: excludeID,
	}, nil
}

// Threshold returns the minimum acceptable similarity.
func (s *Similarity) Threshold() float64 { return s.threshold }

// Limit returns the maximum number of results.
func (s *Similarity) Limit() int { return s.limit }

// Filter returns the equality filter, including the excluded identifier.
func (s *Similarity) Filter() filter.Filter {
	return filter.New(s.category, s.source).WithExcludeID(s.excludeID)
}

// WithExcludeID returns a copy excluding the given document from results.
func (s *Similarity) WithExcludeID(id string) Similarity {
	c := *s
	c.excludeID = id
	return c
}

// WithLimit returns a copy with a different result limit.
func (s *Similarity) WithLimit(limit int) (Similarity, error) {
	if limit <= 0 {
		return Similarity{}, fmt.Errorf("limit must be positive")
	}
	c := *s
	c.limit = limit
	return c, nil
}

// Duplicates is a validated duplicate scan query.
type Duplicates struct {
	threshold     float64
	perQueryLimit int
	sampleSize    int
}

// NewDuplicates validates and creates a duplicate scan query. A zero
// sampleSize means "scan the whole corpus".
func NewDuplicates(threshold float64, perQueryLimit, sampleSize int) (Duplicates, error) {
	if threshold < 0 || threshold > 1 {
		return Duplicates{}, fmt.Errorf("threshold %g: %w", threshold, domain.ErrInvalidThreshold)
	}
	if threshold == 0 {
		threshold = DefaultDuplicateThreshold
	}
	if perQueryLimit <= 0 {
		perQueryLimit = DefaultPerQueryLimit
	}
	if sampleSize < 0 {
		return Duplicates{}, fmt.Errorf("sample size must not be negative")
	}
	return Duplicates{threshold: threshold, perQueryLimit: perQueryLimit, sampleSize: sampleSize}, nil
}

// Threshold returns the duplicate similarity threshold.
func (d *Duplicates) Threshold() float64 { return d.threshold }

// PerQueryLimit returns the per-document similar lookup limit.
func (d *Duplicates) PerQueryLimit() int { return d.perQueryLimit }

// SampleSize returns the corpus sample bound, 0 meaning the full corpus.
func (d *Duplicates) SampleSize() int { return d.sampleSize }
